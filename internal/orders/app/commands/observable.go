package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/metrics"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservablePlaceOrderHandler struct {
	handler PlaceOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservablePlaceOrderHandler(handler PlaceOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservablePlaceOrderHandler {
	return &ObservablePlaceOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservablePlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlaceOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		o.metrics.RecordFinalizeDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordOrderPlaced(ctx, success)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("customer.id", cmd.CustomerID),
		attribute.Int("cart.items", len(cmd.Items)),
		attribute.String("order.delivery_type", string(cmd.Delivery)),
	)

	o.logger.InfoContext(ctx, "placing order",
		"customer_id", cmd.CustomerID,
		"items", len(cmd.Items),
	)

	order, err := o.handler.Handle(ctx, cmd)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to place order",
			"error", err,
			"customer_id", cmd.CustomerID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.total", order.TotalCost.StringFixed(2)),
	)

	o.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"total", order.TotalCost.StringFixed(2),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}

type ObservableDecideOrderHandler struct {
	handler DecideOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableDecideOrderHandler(handler DecideOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableDecideOrderHandler {
	return &ObservableDecideOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableDecideOrderHandler) Handle(ctx context.Context, cmd DecideOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "DecideOrderCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.action", string(cmd.Action)),
	)

	order, err := o.handler.Handle(ctx, cmd)
	o.metrics.RecordDecision(ctx, string(cmd.Action), decisionOutcome(err))

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.WarnContext(ctx, "order decision not applied",
			"order_id", cmd.OrderID,
			"action", string(cmd.Action),
			"error", err,
		)
		return order, err
	}

	o.logger.InfoContext(ctx, "order decision applied",
		"order_id", order.ID,
		"status", string(order.Status),
	)
	telemetry.SetSpanSuccess(span)

	return order, nil
}

func decisionOutcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrInvalidTransition):
		return "already_decided"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
