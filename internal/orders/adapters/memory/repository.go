package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

const firstOrderNumber = 100

// Repository provides an in-memory order store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	seq    atomic.Int64
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	r := &Repository{orders: make(map[string]domain.Order)}
	r.seq.Store(firstOrderNumber - 1)
	return r
}

// NextOrderID hands out ORD-<n> identifiers from an atomic counter.
func (r *Repository) NextOrderID(_ context.Context) (string, error) {
	return fmt.Sprintf("ORD-%d", r.seq.Add(1)), nil
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloneOrder(order)
	return &copy, nil
}

// UpdateStatus applies the update if the order still has update.From.
func (r *Repository) UpdateStatus(_ context.Context, id string, update domain.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.Status != update.From {
		return ports.ErrStatusConflict
	}

	r.orders[id] = order.Apply(update)
	return nil
}

// ListByCustomer returns the customer's most recent orders first.
func (r *Repository) ListByCustomer(_ context.Context, customerID int64, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			result = append(result, cloneOrder(order))
		}
	}
	sortRecentFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	sortRecentFirst(result)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := min(start+pageSize, len(result))
	return result[start:end], nil
}

func sortRecentFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.CartItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}
