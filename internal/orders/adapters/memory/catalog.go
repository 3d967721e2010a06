package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// Catalog is an in-memory product directory. Insertion order is display order.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewCatalog seeds the catalog with products.
func NewCatalog(products ...domain.Product) *Catalog {
	c := &Catalog{}
	for _, p := range products {
		c.Put(p)
	}
	return c
}

// Put adds or replaces a product.
func (c *Catalog) Put(product domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(product.ID); i >= 0 {
		c.products[i] = product
		return
	}
	c.products = append(c.products, product)
}

func (c *Catalog) ListActive(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var active []domain.Product
	for _, p := range c.products {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// ListAll returns every product, inactive ones included.
func (c *Catalog) ListAll(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product(nil), c.products...), nil
}

func (c *Catalog) Create(_ context.Context, product domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(product.ID) >= 0 {
		return ports.ErrConflict
	}
	c.products = append(c.products, product)
	return nil
}

func (c *Catalog) Update(_ context.Context, product domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(product.ID)
	if i < 0 {
		return ports.ErrNotFound
	}
	c.products[i] = product
	return nil
}

func (c *Catalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return ports.ErrNotFound
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(id string) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, ports.ErrNotFound
}
