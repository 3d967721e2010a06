package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// OrderRepository is the authoritative order store.
type OrderRepository interface {
	// NextOrderID returns a new human-readable identifier, unique across callers.
	NextOrderID(ctx context.Context) (string, error)
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus applies update only while the order still has update.From.
	// It returns ErrStatusConflict otherwise.
	UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) error
	// ListByCustomer returns up to limit orders of the customer, most recent first.
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
}

// ListFilter narrows list queries by status and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when creating a record whose id already exists.
	ErrConflict = errors.New("already exists")
	// ErrStatusConflict is returned when a guarded status update finds a different current status.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
