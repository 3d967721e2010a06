package portstest

import (
	"context"
	"sync"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// EventBus records published events.
type EventBus struct {
	mu      sync.Mutex
	Placed  []string
	Changed []string // "<orderID>:<status>"
	Err     error
}

func (b *EventBus) PublishOrderPlaced(_ context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Placed = append(b.Placed, orderID)
	return nil
}

func (b *EventBus) PublishOrderStatusChanged(_ context.Context, orderID string, status domain.OrderStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Changed = append(b.Changed, orderID+":"+string(status))
	return nil
}
