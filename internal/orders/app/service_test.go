package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/adapters/memory"
	"github.com/dejobratic/orderbot/internal/orders/app"
	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/metrics"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/orders/ports/portstest"
	"github.com/dejobratic/orderbot/internal/orders/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type fixture struct {
	service  *app.Service
	repo     *memory.Repository
	notifier *portstest.Notifier
	events   *portstest.EventBus
	profiles *memory.Profiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m, err := metrics.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	f := &fixture{
		repo:     memory.NewRepository(),
		notifier: portstest.NewNotifier(),
		events:   &portstest.EventBus{},
		profiles: memory.NewProfiles(),
	}
	catalog := memory.NewCatalog(domain.Product{
		ID: "P1", Name: "Tea", Price: decimal.RequireFromString("10.00"), Stock: 5, Active: true,
	})
	f.service = app.NewService(app.Dependencies{
		Repo:              f.repo,
		Catalog:           catalog,
		Profiles:          f.profiles,
		Notifier:          f.notifier,
		Events:            f.events,
		Receipts:          receipt.NewRenderer(time.Now),
		AdminChannelID:    -100,
		RecentOrdersLimit: 2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	return f
}

func (f *fixture) place(t *testing.T, customerID int64) *domain.Order {
	t.Helper()
	order, err := f.service.PlaceOrder(context.Background(), commands.PlaceOrderCommand{
		CustomerID: customerID,
		ChatID:     customerID,
		Profile: domain.CustomerProfile{
			Name:  "Ann",
			Phone: "09123",
			Address: domain.Address{
				HouseNo: "12", Street: "Main", Ward: "3", Township: "Downtown", City: "Yangon",
			},
		},
		Items: []domain.CartItem{
			{ProductID: "P1", ProductName: "Tea", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
		Delivery:        domain.DeliveryExpressCars,
		PaymentPhotoRef: "photo",
	})
	require.NoError(t, err)
	return order
}

func TestServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, 42)

	approved, err := f.service.Decide(ctx, order.ID, commands.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	_, err = f.service.Decide(ctx, order.ID, commands.ActionReject)
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)

	delivered, err := f.service.Decide(ctx, order.ID, commands.ActionDeliver)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, delivered.Status)

	stored, err := f.service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, stored.Status)
	assert.NotNil(t, stored.ApprovedAt)

	assert.Equal(t, []string{
		order.ID + ":approved",
		order.ID + ":delivered",
	}, f.events.Changed)
}

func TestServiceRejectWithReason(t *testing.T) {
	f := newFixture(t)
	order := f.place(t, 42)

	rejected, err := f.service.Reject(context.Background(), order.ID, "payment screenshot unreadable")
	require.NoError(t, err)
	assert.Equal(t, "payment screenshot unreadable", rejected.RejectionReason)
}

func TestServiceRecentOrders(t *testing.T) {
	f := newFixture(t)
	first := f.place(t, 42)
	f.place(t, 7)
	second := f.place(t, 42)
	third := f.place(t, 42)

	orders, err := f.service.RecentOrders(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	ids := []string{orders[0].ID, orders[1].ID}
	assert.NotContains(t, ids, first.ID)
	assert.ElementsMatch(t, []string{second.ID, third.ID}, ids)
}

func TestServiceProducts(t *testing.T) {
	f := newFixture(t)

	products, err := f.service.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "P1", products[0].ID)
}

func TestServiceProductManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateProduct(ctx, domain.Product{
		ID: " P2 ", Name: "Cocoa", Price: decimal.RequireFromString("2.25"), Stock: 3, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "P2", created.ID)

	_, err = f.service.CreateProduct(ctx, domain.Product{ID: "P2", Name: "Dup"})
	assert.ErrorIs(t, err, ports.ErrConflict)

	_, err = f.service.CreateProduct(ctx, domain.Product{ID: "P3", Name: "Bad", Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = f.service.UpdateProduct(ctx, domain.Product{ID: "P2", Name: "Cocoa", Price: decimal.NewFromInt(2), Stock: 0, Active: false})
	require.NoError(t, err)

	active, err := f.service.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1, "deactivated product is hidden from the bot")

	all, err := f.service.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, f.service.DeleteProduct(ctx, "P2"))
	assert.ErrorIs(t, f.service.DeleteProduct(ctx, "P2"), ports.ErrNotFound)
}

func TestServiceBanAndCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 42)

	require.NoError(t, f.service.SetBanned(ctx, 42, true))

	customers, err := f.service.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(42), customers[0].CustomerID)
	assert.True(t, customers[0].Banned)

	require.NoError(t, f.service.SetBanned(ctx, 42, false))
	banned, err := f.profiles.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestServiceBroadcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, f.profiles.Upsert(ctx, domain.Profile{CustomerID: id}))
	}
	require.NoError(t, f.service.SetBanned(ctx, 3, true))

	result, err := f.service.Broadcast(ctx, "  Closed on Sunday  ")
	require.NoError(t, err)
	assert.Equal(t, commands.BroadcastResult{Recipients: 2, Sent: 2, Failed: 0}, *result)
	assert.Equal(t, "Closed on Sunday", f.notifier.Last(1).Text)
	assert.Equal(t, "Closed on Sunday", f.notifier.Last(2).Text)
	assert.Empty(t, f.notifier.Messages(3))

	_, err = f.service.Broadcast(ctx, "   ")
	assert.ErrorIs(t, err, commands.ErrEmptyBroadcast)

	f.notifier.Fail[portstest.KindText] = errors.New("blocked by user")
	result, err = f.service.Broadcast(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
}
