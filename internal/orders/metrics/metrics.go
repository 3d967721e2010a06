package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the order and conversation instruments.
type Metrics struct {
	ordersPlacedTotal  metric.Int64Counter
	finalizeDuration   metric.Float64Histogram
	decisionsTotal     metric.Int64Counter
	conversationEvents metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Orders submitted with a payment screenshot"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.finalizeDuration, err = meter.Float64Histogram(
		"order_finalize_duration_seconds",
		metric.WithDescription("Duration of the order finalize sequence"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_finalize_duration histogram: %w", err)
	}

	m.decisionsTotal, err = meter.Int64Counter(
		"order_decisions_total",
		metric.WithDescription("Admin decisions on orders by action and outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_decisions_total counter: %w", err)
	}

	m.conversationEvents, err = meter.Int64Counter(
		"conversation_events_total",
		metric.WithDescription("Inbound conversation events by kind and step"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation_events_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", statusLabel(success)),
	))
}

func (m *Metrics) RecordFinalizeDuration(ctx context.Context, durationSeconds float64) {
	m.finalizeDuration.Record(ctx, durationSeconds)
}

// RecordDecision counts an approve/reject/deliver attempt; outcome is "applied",
// "already_decided", "not_found" or "error".
func (m *Metrics) RecordDecision(ctx context.Context, action, outcome string) {
	m.decisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordConversationEvent(ctx context.Context, kind, step string) {
	m.conversationEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("step", step),
	))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
