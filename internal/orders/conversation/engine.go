// Package conversation drives the customer checkout dialogue as an explicit
// state machine and routes admin decisions made from the admin channel.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/messages"
	"github.com/dejobratic/orderbot/internal/orders/metrics"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Orders is the slice of the order service the engine needs.
type Orders interface {
	PlaceOrder(ctx context.Context, cmd commands.PlaceOrderCommand) (*domain.Order, error)
	Decide(ctx context.Context, orderID string, action commands.Action) (*domain.Order, error)
	RecentOrders(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type Dependencies struct {
	Orders   Orders
	Catalog  ports.Catalog
	Profiles ports.ProfileStore
	// Admins may be nil, in which case /admin is refused for everyone.
	Admins   ports.AdminDirectory
	Notifier ports.Notifier
	Sessions *SessionStore
}

type Config struct {
	// AdminChannelID is the only chat allowed to approve or reject orders.
	// Zero disables Telegram decisions.
	AdminChannelID  int64
	PaymentDetails  string
	AdminPanelURL   string
	ProductsPerPage int
}

// Engine handles one event at a time per customer; the Dispatcher provides that ordering.
type Engine struct {
	orders   Orders
	catalog  ports.Catalog
	profiles ports.ProfileStore
	admins   ports.AdminDirectory
	notifier ports.Notifier
	sessions *SessionStore
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewEngine(deps Dependencies, cfg Config, logger *slog.Logger, metrics *metrics.Metrics) *Engine {
	if cfg.ProductsPerPage <= 0 {
		cfg.ProductsPerPage = 5
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &Engine{
		orders:   deps.Orders,
		catalog:  deps.Catalog,
		profiles: deps.Profiles,
		admins:   deps.Admins,
		notifier: deps.Notifier,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle applies ev to the sender's session and replies. Failures are
// reported to the sender and logged, never returned.
func (e *Engine) Handle(ctx context.Context, ev Event) {
	ctx, span := telemetry.StartSpan(ctx, "Conversation.Handle")
	defer span.End()

	step := StepBrowsing
	if s, ok := e.sessions.Get(ev.CustomerID); ok {
		step = s.Step
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("event.kind", ev.Kind.String()),
		attribute.String("conversation.step", step.String()),
		attribute.Int64("customer.id", ev.CustomerID),
	)
	e.metrics.RecordConversationEvent(ctx, ev.Kind.String(), step.String())

	switch ev.Kind {
	case EventCommand:
		e.handleCommand(ctx, ev)
	case EventChoice:
		e.handleChoice(ctx, ev)
	case EventText, EventPhoto:
		e.handleInput(ctx, ev)
	default:
		e.logger.WarnContext(ctx, "unsupported event", "kind", ev.Kind.String(), "customer_id", ev.CustomerID)
	}
}

func (e *Engine) handleCommand(ctx context.Context, ev Event) {
	switch ev.Command {
	case "start":
		e.start(ctx, ev)
	case "orders":
		e.showOrders(ctx, ev)
	case "help":
		e.say(ctx, ev.ChatID, messages.Help)
	case "cancel":
		e.sessions.Clear(ev.CustomerID)
		e.say(ctx, ev.ChatID, messages.Cancelled)
	case "admin":
		e.adminPanel(ctx, ev)
	case "getchatid":
		e.say(ctx, ev.ChatID, messages.ChatInfo(ev.ChatID, ev.ChatType, ev.ChatTitle))
	default:
		e.say(ctx, ev.ChatID, messages.UnknownInput)
	}
}

// handleChoice serves navigation and admin choices in any step and hands
// everything else to the session.
func (e *Engine) handleChoice(ctx context.Context, ev Event) {
	data := ev.Data

	if orderID, ok := messages.TrimPrefix(data, messages.PrefixApprove); ok {
		e.decide(ctx, ev, orderID, commands.ActionApprove)
		return
	}
	if orderID, ok := messages.TrimPrefix(data, messages.PrefixReject); ok {
		e.decide(ctx, ev, orderID, commands.ActionReject)
		return
	}

	switch data {
	case messages.CallbackMyOrders:
		e.showOrders(ctx, ev)
		return
	case messages.CallbackHelp:
		e.say(ctx, ev.ChatID, messages.Help)
		return
	case messages.CallbackBackToMenu:
		text, keyboard := messages.Welcome(ev.FirstName)
		e.ask(ctx, ev.ChatID, text, keyboard)
		return
	}

	if page, ok := messages.TrimIndex(data, messages.PrefixBrowse); ok {
		e.showCatalog(ctx, ev.ChatID, page)
		return
	}
	if productID, ok := messages.TrimPrefix(data, messages.PrefixProduct); ok {
		e.showProduct(ctx, ev.ChatID, productID)
		return
	}
	if productID, ok := messages.TrimPrefix(data, messages.PrefixOrder); ok {
		e.beginOrder(ctx, ev, productID)
		return
	}

	s, ok := e.sessions.Get(ev.CustomerID)
	if !ok || s.Step == StepBrowsing {
		e.say(ctx, ev.ChatID, messages.UnknownInput)
		return
	}
	e.sessionChoice(ctx, s, ev)
}

func (e *Engine) handleInput(ctx context.Context, ev Event) {
	s, ok := e.sessions.Get(ev.CustomerID)
	if !ok || s.Step == StepBrowsing {
		e.say(ctx, ev.ChatID, messages.UnknownInput)
		return
	}

	if ev.Kind == EventPhoto {
		if s.Step == StepPaymentPhoto {
			e.finalize(ctx, s, ev)
			return
		}
		e.hint(ctx, s)
		return
	}
	e.sessionText(ctx, s, ev)
}

func (e *Engine) start(ctx context.Context, ev Event) {
	if err := e.checkBan(ctx, ev.CustomerID); err != nil {
		e.say(ctx, ev.ChatID, messages.Banned)
		return
	}

	if productID := strings.TrimSpace(ev.Args); productID != "" {
		product, err := e.activeProduct(ctx, productID)
		if err == nil {
			text, keyboard := messages.DeepLinkProduct(*product)
			e.ask(ctx, ev.ChatID, text, keyboard)
			return
		}
		if errorKind(err) != KindNotFound {
			e.fail(ctx, ev.ChatID, "deep link product lookup", err)
			return
		}
		e.say(ctx, ev.ChatID, messages.ProductNotFound)
	}

	text, keyboard := messages.Welcome(ev.FirstName)
	e.ask(ctx, ev.ChatID, text, keyboard)
}

func (e *Engine) showCatalog(ctx context.Context, chatID int64, page int) {
	products, err := e.catalog.ListActive(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to list products", "error", err)
		e.say(ctx, chatID, messages.ProductsUnavailable)
		return
	}
	if len(products) == 0 {
		e.say(ctx, chatID, messages.NoProducts)
		return
	}

	text, keyboard := messages.CatalogPage(domain.PageProducts(products, page, e.cfg.ProductsPerPage))
	e.ask(ctx, chatID, text, keyboard)
}

func (e *Engine) showProduct(ctx context.Context, chatID int64, productID string) {
	product, err := e.activeProduct(ctx, productID)
	if err != nil {
		if errorKind(err) == KindNotFound {
			e.say(ctx, chatID, messages.ProductNotFound)
			return
		}
		e.fail(ctx, chatID, "product lookup", err)
		return
	}
	text, keyboard := messages.ProductDetail(*product)
	e.ask(ctx, chatID, text, keyboard)
}

func (e *Engine) showOrders(ctx context.Context, ev Event) {
	orders, err := e.orders.RecentOrders(ctx, ev.CustomerID)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to list customer orders", "customer_id", ev.CustomerID, "error", err)
		e.say(ctx, ev.ChatID, messages.OrdersUnavailable)
		return
	}
	e.say(ctx, ev.ChatID, messages.MyOrders(orders))
}

func (e *Engine) adminPanel(ctx context.Context, ev Event) {
	if e.admins == nil {
		e.say(ctx, ev.ChatID, messages.NotAdmin)
		return
	}
	ok, err := e.admins.IsAdmin(ctx, ev.CustomerID)
	if err != nil {
		e.fail(ctx, ev.ChatID, "admin lookup", err)
		return
	}
	if !ok {
		e.say(ctx, ev.ChatID, messages.NotAdmin)
		return
	}
	e.say(ctx, ev.ChatID, messages.AdminPanel(e.cfg.AdminPanelURL))
}

// activeProduct treats inactive products as missing.
func (e *Engine) activeProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := e.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ports.ErrNotFound
	}
	return product, nil
}

// checkBan returns domain.ErrBanned for banned customers. It fails open: a
// store outage does not lock customers out.
func (e *Engine) checkBan(ctx context.Context, customerID int64) error {
	banned, err := e.profiles.IsBanned(ctx, customerID)
	if err != nil {
		e.logger.WarnContext(ctx, "ban check failed", "customer_id", customerID, "error", err)
		return nil
	}
	if banned {
		e.logger.InfoContext(ctx, "banned customer refused", "customer_id", customerID, "kind", KindBanned.String())
		return fmt.Errorf("customer %d: %w", customerID, domain.ErrBanned)
	}
	return nil
}

func (e *Engine) say(ctx context.Context, chatID int64, text string) {
	commands.BestEffort(ctx, e.logger, "send_text", func(ctx context.Context) error {
		return e.notifier.SendText(ctx, chatID, text)
	}, "chat_id", chatID)
}

func (e *Engine) ask(ctx context.Context, chatID int64, text string, keyboard ports.Keyboard) {
	commands.BestEffort(ctx, e.logger, "send_choices", func(ctx context.Context) error {
		_, err := e.notifier.SendChoices(ctx, chatID, text, keyboard)
		return err
	}, "chat_id", chatID)
}

// fail reports an unexpected failure with a generic message and keeps the detail in the log.
func (e *Engine) fail(ctx context.Context, chatID int64, action string, err error) {
	e.logger.ErrorContext(ctx, "conversation step failed",
		"action", action,
		"kind", errorKind(err).String(),
		"chat_id", chatID,
		"error", err,
	)
	e.say(ctx, chatID, messages.TryAgainLater)
}

var errNoPendingProduct = errors.New("no product pending in quantity step")
