package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `
	order_string, telegram_user_id, user_name, phone, address, items,
	total_cost::text, delivery_type, status, COALESCE(rejection_reason, ''),
	approved_at, created_at, updated_at
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) NextOrderID(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_string_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order string: %w", err)
	}
	return fmt.Sprintf("ORD-%d", n), nil
}

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	address, err := json.Marshal(order.Customer.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_string, telegram_user_id, user_name, phone, address, items,
			total_cost, delivery_type, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		uuid.New(),
		order.ID,
		order.CustomerID,
		order.Customer.Name,
		order.Customer.Phone,
		address,
		items,
		order.TotalCost.String(),
		string(order.DeliveryType),
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_string = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) error {
	query := `
		UPDATE orders
		SET status = $1,
		    updated_at = $2,
		    approved_at = COALESCE($3, approved_at),
		    rejection_reason = COALESCE(NULLIF($4, ''), rejection_reason)
		WHERE order_string = $5 AND status = $6
	`

	result, err := r.pool.Exec(ctx, query,
		string(update.To),
		update.At,
		update.ApprovedAt,
		update.RejectionReason,
		id,
		string(update.From),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_string = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return ports.ErrNotFound
		}
		return ports.ErrStatusConflict
	}

	return nil
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE telegram_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query customer orders: %w", err)
	}
	return collectOrders(rows)
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order    domain.Order
		address  []byte
		items    []byte
		total    string
		delivery string
		status   string
	)

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.Customer.Name,
		&order.Customer.Phone,
		&address,
		&items,
		&total,
		&delivery,
		&status,
		&order.RejectionReason,
		&order.ApprovedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(address, &order.Customer.Address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if order.TotalCost, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("decode total_cost: %w", err)
	}
	order.DeliveryType = domain.DeliveryType(delivery)
	order.Status = domain.OrderStatus(status)

	return &order, nil
}
