package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/messages"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/orders/receipt"
)

// PlaceOrderCommand carries a confirmed cart and the payment screenshot.
type PlaceOrderCommand struct {
	CustomerID      int64
	ChatID          int64
	Username        string
	Profile         domain.CustomerProfile
	Items           []domain.CartItem
	Delivery        domain.DeliveryType
	PaymentPhotoRef string
}

func (c PlaceOrderCommand) Validate() error {
	if len(c.Items) == 0 {
		return domain.ErrEmptyCart
	}
	if c.PaymentPhotoRef == "" {
		return errors.New("payment photo is required")
	}
	if _, err := domain.ParseDeliveryType(string(c.Delivery)); err != nil {
		return err
	}
	return c.Profile.Validate()
}

type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

// ReceiptRenderer turns a persisted order into a document.
type ReceiptRenderer interface {
	Render(order domain.Order) ([]byte, error)
}

// PlaceOrderCommandHandler runs the finalize sequence. Only id allocation and
// persistence can fail the command; every later step is best-effort.
type PlaceOrderCommandHandler struct {
	repo           ports.OrderRepository
	profiles       ports.ProfileStore
	notifier       ports.Notifier
	events         ports.EventBus
	receipts       ReceiptRenderer
	adminChannelID int64
	logger         *slog.Logger
	now            func() time.Time
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	profiles ports.ProfileStore,
	notifier ports.Notifier,
	events ports.EventBus,
	receipts ReceiptRenderer,
	adminChannelID int64,
	logger *slog.Logger,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:           repo,
		profiles:       profiles,
		notifier:       notifier,
		events:         events,
		receipts:       receipts,
		adminChannelID: adminChannelID,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	orderID, err := h.repo.NextOrderID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order id: %w", err)
	}

	order, err := domain.NewOrder(orderID, cmd.CustomerID, cmd.Profile, cmd.Items, cmd.Delivery, h.now())
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", order.ID, err)
	}

	h.announce(ctx, order, cmd)

	BestEffort(ctx, h.logger, "upsert_profile", func(ctx context.Context) error {
		return h.profiles.Upsert(ctx, domain.Profile{
			CustomerID: cmd.CustomerID,
			Username:   cmd.Username,
			Phone:      cmd.Profile.Phone,
		})
	}, "order_id", order.ID)

	BestEffort(ctx, h.logger, "publish_order_placed", func(ctx context.Context) error {
		return h.events.PublishOrderPlaced(ctx, order.ID)
	}, "order_id", order.ID)

	BestEffort(ctx, h.logger, "notify_customer_pending", func(ctx context.Context) error {
		return h.notifier.SendText(ctx, cmd.ChatID, messages.OrderPlaced(order))
	}, "order_id", order.ID)

	return &order, nil
}

// announce delivers the receipt to the customer and the order to the admin
// channel. Each send is independent of the others.
func (h *PlaceOrderCommandHandler) announce(ctx context.Context, order domain.Order, cmd PlaceOrderCommand) {
	filename := receipt.Filename(order.ID)

	pdf, err := h.receipts.Render(order)
	if err != nil {
		h.logger.WarnContext(ctx, "receipt rendering failed", "order_id", order.ID, "error", err)
	}

	if pdf != nil {
		BestEffort(ctx, h.logger, "send_customer_receipt", func(ctx context.Context) error {
			return h.notifier.SendDocument(ctx, cmd.ChatID, filename, pdf, messages.ReceiptCaption(order.ID))
		}, "order_id", order.ID)
	}

	if h.adminChannelID == 0 {
		return
	}

	BestEffort(ctx, h.logger, "send_admin_order", func(ctx context.Context) error {
		text, keyboard := messages.AdminOrder(order)
		_, err := h.notifier.SendChoices(ctx, h.adminChannelID, text, keyboard)
		return err
	}, "order_id", order.ID)

	BestEffort(ctx, h.logger, "send_admin_payment_photo", func(ctx context.Context) error {
		return h.notifier.SendPhoto(ctx, h.adminChannelID, cmd.PaymentPhotoRef, messages.PaymentPhotoCaption)
	}, "order_id", order.ID)

	if pdf != nil {
		BestEffort(ctx, h.logger, "send_admin_receipt", func(ctx context.Context) error {
			return h.notifier.SendDocument(ctx, h.adminChannelID, filename, pdf, "")
		}, "order_id", order.ID)
	}
}
