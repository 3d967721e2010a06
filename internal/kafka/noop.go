package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status_changed"
)

// NoopEventBus logs order lifecycle events instead of producing them to brokers.
// It is selected when KAFKA_BROKERS is empty.
type NoopEventBus struct {
	logger *slog.Logger
}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus(logger *slog.Logger) *NoopEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopEventBus{logger: logger}
}

func (n *NoopEventBus) PublishOrderPlaced(ctx context.Context, orderID string) error {
	n.logger.DebugContext(ctx, "event::"+TopicOrderPlaced, "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, status domain.OrderStatus) error {
	n.logger.DebugContext(ctx, "event::"+TopicOrderStatusChanged, "order_id", orderID, "status", string(status))
	return nil
}
