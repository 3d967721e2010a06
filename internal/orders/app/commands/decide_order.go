package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/messages"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// Action is an admin decision on an order.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDeliver Action = "deliver"
)

func (a Action) target() (domain.OrderStatus, error) {
	switch a {
	case ActionApprove:
		return domain.StatusApproved, nil
	case ActionReject:
		return domain.StatusRejected, nil
	case ActionDeliver:
		return domain.StatusDelivered, nil
	default:
		return "", fmt.Errorf("unknown action %q", string(a))
	}
}

type DecideOrderCommand struct {
	OrderID string
	Action  Action
	// Reason is stored on rejection; empty means the admin channel default.
	Reason string
}

func (c DecideOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	_, err := c.Action.target()
	return err
}

type DecideOrderHandler interface {
	Handle(ctx context.Context, cmd DecideOrderCommand) (*domain.Order, error)
}

// DecideOrderCommandHandler moves an order along its lifecycle and tells the customer.
//
// On domain.ErrAlreadyDecided the current order is returned together with the
// error so callers can show its status. Nothing is sent to the customer then.
type DecideOrderCommandHandler struct {
	repo     ports.OrderRepository
	notifier ports.Notifier
	events   ports.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewDecideOrderCommandHandler(
	repo ports.OrderRepository,
	notifier ports.Notifier,
	events ports.EventBus,
	logger *slog.Logger,
) *DecideOrderCommandHandler {
	return &DecideOrderCommandHandler{
		repo:     repo,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *DecideOrderCommandHandler) Handle(ctx context.Context, cmd DecideOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	target, _ := cmd.Action.target()

	order, err := h.repo.GetByID(ctx, strings.ToUpper(strings.TrimSpace(cmd.OrderID)))
	if err != nil {
		return nil, err
	}

	reason := cmd.Reason
	if target == domain.StatusRejected && reason == "" {
		reason = domain.RejectionReasonAdminChannel
	}

	update, err := order.Transition(target, h.now(), reason)
	if err != nil {
		return order, err
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, update); err != nil {
		if errors.Is(err, ports.ErrStatusConflict) {
			// Lost the race against another decision.
			if current, getErr := h.repo.GetByID(ctx, order.ID); getErr == nil {
				order = current
			}
			return order, fmt.Errorf("%w: order %s is %s", domain.ErrAlreadyDecided, order.ID, order.Status)
		}
		return order, fmt.Errorf("update order %s: %w", order.ID, err)
	}

	decided := order.Apply(update)

	if notice := customerNotice(decided); notice != "" {
		BestEffort(ctx, h.logger, "notify_customer_decision", func(ctx context.Context) error {
			return h.notifier.SendText(ctx, decided.CustomerID, notice)
		}, "order_id", decided.ID, "status", string(decided.Status))
	}

	BestEffort(ctx, h.logger, "publish_status_changed", func(ctx context.Context) error {
		return h.events.PublishOrderStatusChanged(ctx, decided.ID, decided.Status)
	}, "order_id", decided.ID)

	return &decided, nil
}

func customerNotice(order domain.Order) string {
	switch order.Status {
	case domain.StatusApproved:
		return messages.Approved(order.ID)
	case domain.StatusRejected:
		return messages.Rejected(order.ID)
	case domain.StatusDelivered:
		return messages.Delivered(order.ID)
	default:
		return ""
	}
}
