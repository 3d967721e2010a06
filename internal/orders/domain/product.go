package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. The bot only reads it; the admin API maintains it.
type Product struct {
	ID          string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"is_active"`
}

// Validate checks the fields the admin API accepts.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: product_id is required", ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

// ProductPage is one page of the active catalog. Page is zero-based.
type ProductPage struct {
	Products   []Product
	Page       int
	TotalPages int
}

// HasPrevious reports whether a page exists before this one.
func (p ProductPage) HasPrevious() bool {
	return p.Page > 0
}

// HasNext reports whether a page exists after this one.
func (p ProductPage) HasNext() bool {
	return p.Page < p.TotalPages-1
}

// PageProducts slices products into pages of pageSize and returns the
// requested page, clamped to the available range.
func PageProducts(products []Product, page, pageSize int) ProductPage {
	if pageSize <= 0 {
		pageSize = 5
	}
	total := (len(products) + pageSize - 1) / pageSize
	if page >= total {
		page = total - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * pageSize
	end := min(start+pageSize, len(products))

	var slice []Product
	if start < end {
		slice = make([]Product, end-start)
		copy(slice, products[start:end])
	}

	return ProductPage{
		Products:   slice,
		Page:       page,
		TotalPages: total,
	}
}
