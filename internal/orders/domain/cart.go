package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is a product line captured when the customer picked a quantity.
// Price is a snapshot and does not follow later catalog changes.
type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// NewCartItem validates quantity against the stock observed right now.
func NewCartItem(product Product, quantity int) (CartItem, error) {
	if quantity < 1 || quantity > product.Stock {
		return CartItem{}, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidQuantity, quantity, product.Stock)
	}
	return CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	}, nil
}

// LineTotal is quantity × unit price.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the line totals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
