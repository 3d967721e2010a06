package kafka

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics tracks order lifecycle event publishing.
type Metrics struct {
	publishLatency metric.Float64Histogram
	eventsTotal    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.publishLatency, err = meter.Float64Histogram(
		"kafka_producer_latency_seconds",
		metric.WithDescription("Order event publish latency by topic"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_producer_latency histogram: %w", err)
	}

	m.eventsTotal, err = meter.Int64Counter(
		"order_events_published_total",
		metric.WithDescription("Order lifecycle events handed to the event bus"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_events_published_total counter: %w", err)
	}

	return m, nil
}

// RecordPublish records one publish attempt. Failed publishes never fail the order flow,
// so the error outcome is only visible here.
func (m *Metrics) RecordPublish(ctx context.Context, topic string, durationSeconds float64, success bool) {
	outcome := "published"
	if !success {
		outcome = "dropped"
	}
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	)
	m.publishLatency.Record(ctx, durationSeconds, attrs)
	m.eventsTotal.Add(ctx, 1, attrs)
}
