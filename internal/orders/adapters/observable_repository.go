package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/orderbot/internal/database"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/dejobratic/orderbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository wraps an order store with a span and a query-duration sample per call.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) observe(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository."+operation)
	telemetry.AddSpanAttributes(span, append(attrs, attribute.String("operation", operation))...)

	start := time.Now()
	err := fn(ctx)
	r.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds(), err)

	telemetry.EndSpan(span, err)
	return err
}

func (r *ObservableRepository) NextOrderID(ctx context.Context) (string, error) {
	var id string
	err := r.observe(ctx, "next_order_id", nil, func(ctx context.Context) error {
		var err error
		id, err = r.repo.NextOrderID(ctx)
		return err
	})
	return id, err
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	attrs := []attribute.KeyValue{
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
		attribute.String("order.total", order.TotalCost.StringFixed(2)),
	}
	return r.observe(ctx, "create_order", attrs, func(ctx context.Context) error {
		return r.repo.Create(ctx, order)
	})
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := r.observe(ctx, "get_order_by_id", []attribute.KeyValue{attribute.String("order.id", id)}, func(ctx context.Context) error {
		var err error
		order, err = r.repo.GetByID(ctx, id)
		return err
	})
	return order, err
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) error {
	attrs := []attribute.KeyValue{
		attribute.String("order.id", id),
		attribute.String("order.from_status", string(update.From)),
		attribute.String("order.new_status", string(update.To)),
	}
	return r.observe(ctx, "update_order_status", attrs, func(ctx context.Context) error {
		return r.repo.UpdateStatus(ctx, id, update)
	})
}

func (r *ObservableRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	attrs := []attribute.KeyValue{
		attribute.Int64("customer.id", customerID),
		attribute.Int("limit", limit),
	}
	err := r.observe(ctx, "list_customer_orders", attrs, func(ctx context.Context) error {
		var err error
		orders, err = r.repo.ListByCustomer(ctx, customerID, limit)
		return err
	})
	return orders, err
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}

	var orders []domain.Order
	err := r.observe(ctx, "list_orders", attrs, func(ctx context.Context) error {
		var err error
		orders, err = r.repo.List(ctx, filter)
		return err
	})
	return orders, err
}

// ObservableCatalog is the catalog counterpart of ObservableRepository.
type ObservableCatalog struct {
	catalog ports.ProductStore
	metrics *database.Metrics
}

func NewObservableCatalog(catalog ports.ProductStore, metrics *database.Metrics) *ObservableCatalog {
	return &ObservableCatalog{catalog: catalog, metrics: metrics}
}

func (c *ObservableCatalog) ListActive(ctx context.Context) ([]domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "Catalog.ListActive")

	start := time.Now()
	products, err := c.catalog.ListActive(ctx)
	c.metrics.RecordQuery(ctx, "list_products", time.Since(start).Seconds(), err)

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(products)))
	telemetry.EndSpan(span, err)
	return products, err
}

func (c *ObservableCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "Catalog.GetByID")
	telemetry.AddSpanAttributes(span, attribute.String("product.id", id))

	start := time.Now()
	product, err := c.catalog.GetByID(ctx, id)
	c.metrics.RecordQuery(ctx, "get_product_by_id", time.Since(start).Seconds(), err)

	telemetry.EndSpan(span, err)
	return product, err
}

func (c *ObservableCatalog) ListAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "Catalog.ListAll")

	start := time.Now()
	products, err := c.catalog.ListAll(ctx)
	c.metrics.RecordQuery(ctx, "list_all_products", time.Since(start).Seconds(), err)

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(products)))
	telemetry.EndSpan(span, err)
	return products, err
}

func (c *ObservableCatalog) Create(ctx context.Context, product domain.Product) error {
	return c.write(ctx, "Catalog.Create", "insert_product", product.ID, func(ctx context.Context) error {
		return c.catalog.Create(ctx, product)
	})
}

func (c *ObservableCatalog) Update(ctx context.Context, product domain.Product) error {
	return c.write(ctx, "Catalog.Update", "update_product", product.ID, func(ctx context.Context) error {
		return c.catalog.Update(ctx, product)
	})
}

func (c *ObservableCatalog) Delete(ctx context.Context, id string) error {
	return c.write(ctx, "Catalog.Delete", "delete_product", id, func(ctx context.Context) error {
		return c.catalog.Delete(ctx, id)
	})
}

func (c *ObservableCatalog) write(ctx context.Context, spanName, operation, productID string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	telemetry.AddSpanAttributes(span, attribute.String("product.id", productID))

	start := time.Now()
	err := fn(ctx)
	c.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds(), err)

	telemetry.EndSpan(span, err)
	return err
}
