package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusDelivered OrderStatus = "delivered"
)

// RejectionReasonAdminChannel is stored when an order is rejected from the admin channel.
const RejectionReasonAdminChannel = "Rejected via Telegram admin channel"

// Order is a submitted cart awaiting or past manual approval. Only the
// status fields change after creation.
type Order struct {
	ID              string          `json:"order_string"`
	CustomerID      int64           `json:"telegram_user_id"`
	Customer        CustomerProfile `json:"customer"`
	Items           []CartItem      `json:"items"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	DeliveryType    DeliveryType    `json:"delivery_type"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
}

// NewOrder builds a pending order and computes its total from items.
func NewOrder(id string, customerID int64, profile CustomerProfile, items []CartItem, delivery DeliveryType, now time.Time) (Order, error) {
	snapshot := make([]CartItem, len(items))
	copy(snapshot, items)

	order := Order{
		ID:           id,
		CustomerID:   customerID,
		Customer:     profile,
		Items:        snapshot,
		TotalCost:    CartTotal(snapshot),
		DeliveryType: delivery,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := order.Validate(); err != nil {
		return Order{}, err
	}
	return order, nil
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order id is required")
	}
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %d for %s", ErrInvalidQuantity, item.Quantity, item.ProductID)
		}
	}
	if !o.TotalCost.Equal(CartTotal(o.Items)) {
		return fmt.Errorf("total_cost %s does not match items total %s", o.TotalCost, CartTotal(o.Items))
	}
	if _, err := ParseDeliveryType(string(o.DeliveryType)); err != nil {
		return err
	}
	return o.Customer.Validate()
}

// IsTerminal indicates whether the order accepts no further transitions.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusRejected, StatusDelivered:
		return true
	default:
		return false
	}
}

// StatusUpdate is a guarded status change. From is the status the order must
// still have for the update to apply.
type StatusUpdate struct {
	From            OrderStatus
	To              OrderStatus
	At              time.Time
	ApprovedAt      *time.Time
	RejectionReason string
}

// Transition computes the update moving the order to status to.
// pending → approved|rejected and approved → delivered are the only moves.
func (o Order) Transition(to OrderStatus, at time.Time, reason string) (StatusUpdate, error) {
	update := StatusUpdate{From: o.Status, To: to, At: at}

	switch {
	case o.Status == StatusPending && to == StatusApproved:
		approvedAt := at
		update.ApprovedAt = &approvedAt
		return update, nil
	case o.Status == StatusPending && to == StatusRejected:
		update.RejectionReason = reason
		return update, nil
	case o.Status == StatusApproved && to == StatusDelivered:
		return update, nil
	case o.Status != StatusPending && (to == StatusApproved || to == StatusRejected):
		return StatusUpdate{}, fmt.Errorf("%w: order %s is %s", ErrAlreadyDecided, o.ID, o.Status)
	default:
		return StatusUpdate{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
}

// Apply returns a copy of the order with update applied.
func (o Order) Apply(update StatusUpdate) Order {
	o.Status = update.To
	o.UpdatedAt = update.At
	if update.ApprovedAt != nil {
		o.ApprovedAt = update.ApprovedAt
	}
	if update.RejectionReason != "" {
		o.RejectionReason = update.RejectionReason
	}
	return o
}
