// Package api defines the JSON bodies exchanged with the cart routes.
package api

import (
	"fmt"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image,omitempty"`
	Color    string          `json:"color,omitempty"`
	Size     string          `json:"size,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Quantity int             `json:"quantity"`
	LineID   string          `json:"lineId,omitempty"`
	Key      string          `json:"key"`
}

type Cart struct {
	ID          string          `json:"id,omitempty"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
	Items       []CartItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ItemCount   int             `json:"itemCount"`
}

type AddItemRequest struct {
	MerchandiseID string `json:"merchandiseId" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	UserID        string `json:"userId"`
}

type UpdateCartRequest struct {
	LineID   string `json:"lineId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type RemoveItemRequest struct {
	LineID string `json:"lineId" binding:"required"`
}

// GuestItemRequest adds a line to a guest cart. Guest lines carry their own
// display fields since there is no remote product lookup.
type GuestItemRequest struct {
	ID       string          `json:"id" binding:"required"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Color    string          `json:"color"`
	Size     string          `json:"size"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" binding:"required,len=3"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
}

type GuestUpdateRequest struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type NewsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func FromDomainCart(c domain.Cart) Cart {
	out := Cart{
		ID:          c.ID,
		CheckoutURL: c.CheckoutURL,
		Items:       make([]CartItem, 0, len(c.Items)),
		Subtotal:    c.Subtotal(),
		ItemCount:   c.ItemCount(),
	}
	for _, item := range c.Items {
		out.Items = append(out.Items, FromDomainItem(item))
	}
	return out
}

func FromDomainItem(i domain.CartItem) CartItem {
	return CartItem{
		ID:       i.ID,
		Name:     i.Name,
		Image:    i.Image,
		Color:    i.Color,
		Size:     i.Size,
		Price:    i.Price.Amount,
		Currency: i.Price.Currency.String(),
		Quantity: i.Quantity,
		LineID:   i.LineID,
		Key:      i.Key(),
	}
}

func (c Cart) ToDomain(ownerID string) (domain.Cart, error) {
	out := domain.Cart{
		OwnerID:     ownerID,
		ID:          c.ID,
		CheckoutURL: c.CheckoutURL,
	}
	for _, item := range c.Items {
		d, err := item.ToDomain()
		if err != nil {
			return domain.Cart{}, fmt.Errorf("item[%s]: %w", item.Key, err)
		}
		out.Items = append(out.Items, d)
	}
	return out, nil
}

func (i CartItem) ToDomain() (domain.CartItem, error) {
	unit, err := currency.ParseISO(i.Currency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", i.Currency, err)
	}

	return domain.CartItem{
		ID:       i.ID,
		Name:     i.Name,
		Image:    i.Image,
		Color:    i.Color,
		Size:     i.Size,
		Price:    domain.Money{Amount: i.Price, Currency: unit},
		Quantity: i.Quantity,
		LineID:   i.LineID,
	}, nil
}

func (r GuestItemRequest) ToDomain() (domain.CartItem, error) {
	if r.Price.IsNegative() {
		return domain.CartItem{}, fmt.Errorf("price[%s]: %w", r.Price, domain.ErrInvalidPrice)
	}

	unit, err := currency.ParseISO(r.Currency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", r.Currency, err)
	}

	return domain.CartItem{
		ID:       r.ID,
		Name:     r.Name,
		Image:    r.Image,
		Color:    r.Color,
		Size:     r.Size,
		Price:    domain.Money{Amount: r.Price, Currency: unit},
		Quantity: r.Quantity,
	}, nil
}

func GuestItemFromDomain(i domain.CartItem) GuestItemRequest {
	return GuestItemRequest{
		ID:       i.ID,
		Name:     i.Name,
		Image:    i.Image,
		Color:    i.Color,
		Size:     i.Size,
		Price:    i.Price.Amount,
		Currency: i.Price.Currency.String(),
		Quantity: i.Quantity,
	}
}
