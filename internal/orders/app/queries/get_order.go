package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// ErrInvalidQuery marks queries rejected before reaching the store.
var ErrInvalidQuery = errors.New("invalid query")

// GetOrderQuery looks an order up by its human-readable id.
type GetOrderQuery struct {
	OrderID string
}

// Validate rejects blank ids.
func (q GetOrderQuery) Validate() error {
	if NormalizeOrderID(q.OrderID) == "" {
		return fmt.Errorf("%w: order_id is required", ErrInvalidQuery)
	}
	return nil
}

type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle returns ports.ErrNotFound for unknown ids.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.repo.GetByID(ctx, NormalizeOrderID(query.OrderID))
}

// NormalizeOrderID trims id and upper-cases it, so "ord-101" typed by an admin finds ORD-101.
func NormalizeOrderID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
