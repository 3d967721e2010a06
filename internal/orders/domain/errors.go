package domain

import "errors"

var (
	// ErrInvalidQuantity is returned when a requested quantity is outside 1..stock.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrEmptyCart is returned when an order is built from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidDeliveryType is returned for delivery types outside the supported set.
	ErrInvalidDeliveryType = errors.New("invalid delivery type")
	// ErrAlreadyDecided is returned when approving or rejecting an order that is no longer pending.
	ErrAlreadyDecided = errors.New("order already decided")
	// ErrInvalidTransition is returned for any other disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrBanned is returned when a banned customer tries to use the bot.
	ErrBanned = errors.New("customer is banned")
	// ErrInvalidProduct is returned when a catalog entry fails validation.
	ErrInvalidProduct = errors.New("invalid product")
)
