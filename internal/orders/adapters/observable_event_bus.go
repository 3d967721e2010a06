package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/orderbot/internal/kafka"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderPlaced(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderPlaced")
	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("topic", kafka.TopicOrderPlaced),
	)

	start := time.Now()
	err := e.bus.PublishOrderPlaced(ctx, orderID)
	e.metrics.RecordPublish(ctx, kafka.TopicOrderPlaced, time.Since(start).Seconds(), err == nil)

	telemetry.EndSpan(span, err)
	return err
}

func (e *ObservableEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, status domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderStatusChanged")
	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("order.status", string(status)),
		attribute.String("topic", kafka.TopicOrderStatusChanged),
	)

	start := time.Now()
	err := e.bus.PublishOrderStatusChanged(ctx, orderID, status)
	e.metrics.RecordPublish(ctx, kafka.TopicOrderStatusChanged, time.Since(start).Seconds(), err == nil)

	telemetry.EndSpan(span, err)
	return err
}
