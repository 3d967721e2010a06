package ports

import (
	"context"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// Catalog is the read-only product directory.
type Catalog interface {
	// ListActive returns active products in stable display order.
	ListActive(ctx context.Context) ([]domain.Product, error)
	// GetByID returns ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ProductStore is the writable catalog behind the admin API.
type ProductStore interface {
	Catalog
	// ListAll includes inactive products.
	ListAll(ctx context.Context) ([]domain.Product, error)
	// Create returns ErrConflict when the id is taken.
	Create(ctx context.Context, product domain.Product) error
	// Update and Delete return ErrNotFound for unknown ids.
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id string) error
}
