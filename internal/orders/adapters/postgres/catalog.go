package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const productColumns = `product_id, name, COALESCE(description, ''), price::text, stock, is_active`

// Catalog keeps products in the products table.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) ListActive(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY created_at, product_id
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (c *Catalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	product, err := scanProduct(c.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// ListAll returns every product, inactive ones included.
func (c *Catalog) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at, product_id
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (c *Catalog) Create(ctx context.Context, product domain.Product) error {
	query := `
		INSERT INTO products (product_id, name, description, price, stock, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5, $6)
	`

	_, err := c.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price.String(),
		product.Stock,
		product.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (c *Catalog) Update(ctx context.Context, product domain.Product) error {
	query := `
		UPDATE products
		SET name = $2,
		    description = NULLIF($3, ''),
		    price = $4::numeric,
		    stock = $5,
		    is_active = $6
		WHERE product_id = $1
	`

	tag, err := c.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price.String(),
		product.Stock,
		product.Active,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		product domain.Product
		price   string
	)

	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.Stock,
		&product.Active,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	product.Price = parsed

	return &product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
