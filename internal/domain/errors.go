package domain

import "errors"

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrCurrencyMismatch = errors.New("item currency differs from cart currency")
)
