package queries

import (
	"context"
	"fmt"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

const maxPageSize = 100

// ListCustomerOrdersQuery asks for a customer's most recent orders.
type ListCustomerOrdersQuery struct {
	CustomerID int64
	Limit      int
}

func (q ListCustomerOrdersQuery) Validate() error {
	if q.CustomerID == 0 {
		return fmt.Errorf("%w: customer_id is required", ErrInvalidQuery)
	}
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

type ListCustomerOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListCustomerOrdersQueryHandler(repo ports.OrderRepository) *ListCustomerOrdersQueryHandler {
	return &ListCustomerOrdersQueryHandler{repo: repo}
}

func (h *ListCustomerOrdersQueryHandler) Handle(ctx context.Context, query ListCustomerOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.repo.ListByCustomer(ctx, query.CustomerID, query.Limit)
}

// ListOrdersQuery pages through all orders, optionally by status.
type ListOrdersQuery struct {
	Status   string
	Page     int
	PageSize int
}

// Filter converts the query into a repository filter. An unknown status is an error.
func (q ListOrdersQuery) Filter() (ports.ListFilter, error) {
	if q.Page < 0 || q.PageSize < 0 {
		return ports.ListFilter{}, fmt.Errorf("%w: page and page_size must not be negative", ErrInvalidQuery)
	}
	filter := ports.ListFilter{Page: q.Page, PageSize: min(q.PageSize, maxPageSize)}

	if q.Status == "" {
		return filter, nil
	}
	status := domain.OrderStatus(q.Status)
	switch status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusDelivered:
		filter.Status = &status
		return filter, nil
	default:
		return ports.ListFilter{}, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
	}
}

type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	filter, err := query.Filter()
	if err != nil {
		return nil, err
	}
	return h.repo.List(ctx, filter)
}
