package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/app/queries"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/metrics"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// Dependencies are the gateways the order use cases run against.
type Dependencies struct {
	Repo              ports.OrderRepository
	Catalog           ports.ProductStore
	Profiles          ports.ProfileStore
	Notifier          ports.Notifier
	Events            ports.EventBus
	Receipts          commands.ReceiptRenderer
	// AdminChannelID of zero disables admin channel notifications.
	AdminChannelID    int64
	RecentOrdersLimit int
}

// Service bundles the order use cases shared by the conversation engine and the admin API.
type Service struct {
	catalog           ports.ProductStore
	profiles          ports.ProfileStore
	logger            *slog.Logger
	placeOrder        commands.PlaceOrderHandler
	decideOrder       commands.DecideOrderHandler
	getOrder          *queries.GetOrderQueryHandler
	listOrders        *queries.ListOrdersQueryHandler
	customerOrders    *queries.ListCustomerOrdersQueryHandler
	broadcast         *commands.BroadcastCommandHandler
	recentOrdersLimit int
}

// NewService wires required dependencies.
func NewService(deps Dependencies, logger *slog.Logger, metrics *metrics.Metrics) *Service {
	placeOrder := commands.NewPlaceOrderCommandHandler(
		deps.Repo, deps.Profiles, deps.Notifier, deps.Events, deps.Receipts, deps.AdminChannelID, logger,
	)
	decideOrder := commands.NewDecideOrderCommandHandler(deps.Repo, deps.Notifier, deps.Events, logger)

	limit := deps.RecentOrdersLimit
	if limit <= 0 {
		limit = 10
	}

	return &Service{
		catalog:           deps.Catalog,
		profiles:          deps.Profiles,
		logger:            logger,
		placeOrder:        commands.NewObservablePlaceOrderHandler(placeOrder, logger, metrics),
		decideOrder:       commands.NewObservableDecideOrderHandler(decideOrder, logger, metrics),
		getOrder:          queries.NewGetOrderQueryHandler(deps.Repo),
		listOrders:        queries.NewListOrdersQueryHandler(deps.Repo),
		customerOrders:    queries.NewListCustomerOrdersQueryHandler(deps.Repo),
		broadcast:         commands.NewBroadcastCommandHandler(deps.Profiles, deps.Notifier, logger),
		recentOrdersLimit: limit,
	}
}

// PlaceOrder persists a confirmed cart and announces it.
func (s *Service) PlaceOrder(ctx context.Context, cmd commands.PlaceOrderCommand) (*domain.Order, error) {
	return s.placeOrder.Handle(ctx, cmd)
}

// Decide applies an admin action. On domain.ErrAlreadyDecided the current
// order is returned alongside the error.
func (s *Service) Decide(ctx context.Context, orderID string, action commands.Action) (*domain.Order, error) {
	return s.decideOrder.Handle(ctx, commands.DecideOrderCommand{OrderID: orderID, Action: action})
}

// Reject rejects with a custom reason; an empty reason stores the admin channel default.
func (s *Service) Reject(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	return s.decideOrder.Handle(ctx, commands.DecideOrderCommand{
		OrderID: orderID,
		Action:  commands.ActionReject,
		Reason:  reason,
	})
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrder.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

func (s *Service) ListOrders(ctx context.Context, query queries.ListOrdersQuery) ([]domain.Order, error) {
	return s.listOrders.Handle(ctx, query)
}

// RecentOrders returns the customer's latest orders, most recent first.
func (s *Service) RecentOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return s.customerOrders.Handle(ctx, queries.ListCustomerOrdersQuery{
		CustomerID: customerID,
		Limit:      s.recentOrdersLimit,
	})
}

// Products lists the active catalog.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListActive(ctx)
}

// AllProducts lists the catalog including inactive products.
func (s *Service) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListAll(ctx)
}

// CreateProduct returns ports.ErrConflict when the id is taken.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.catalog.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "active", product.Active)
	return &product, nil
}

// UpdateProduct replaces every field of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.catalog.Update(ctx, product); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product updated", "product_id", product.ID, "active", product.Active)
	return &product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.catalog.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// Customers lists every known customer profile, newest first.
func (s *Service) Customers(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.List(ctx)
}

// SetBanned bans or unbans a customer. Banned customers cannot start or place orders.
func (s *Service) SetBanned(ctx context.Context, customerID int64, banned bool) error {
	if err := s.profiles.SetBanned(ctx, customerID, banned); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "customer ban updated", "customer_id", customerID, "banned", banned)
	return nil
}

// Broadcast sends message to every customer who is not banned.
func (s *Service) Broadcast(ctx context.Context, message string) (*commands.BroadcastResult, error) {
	return s.broadcast.Handle(ctx, commands.BroadcastCommand{Message: message})
}
