package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
)

const guestIDHeader = "X-Guest-ID"

// guestCart talks to /api/guest/cart. ownerID is sent as the guest id.
type guestCart struct {
	c *client
}

func NewGuestCart(baseURL string, opts ...Option) (port.CartRepository, error) {
	c, err := newClient(baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("newClient: %w", err)
	}

	return &guestCart{c: c}, nil
}

var guestErrors = statusErrors{
	http.StatusNotFound: domain.ErrItemNotFound,
	http.StatusConflict: domain.ErrCurrencyMismatch,
}

func guestHeader(ownerID string) (http.Header, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}
	return http.Header{guestIDHeader: []string{ownerID}}, nil
}

func (g *guestCart) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	header, err := guestHeader(ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	var cart api.Cart
	if err := g.c.do(ctx, http.MethodGet, "/api/guest/cart", header, nil, &cart, guestErrors); err != nil {
		return domain.Cart{}, fmt.Errorf("get guest cart: %w", err)
	}

	out, err := cart.ToDomain(ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.ToDomain: %w", err)
	}

	return out, nil
}

func (g *guestCart) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	header, err := guestHeader(ownerID)
	if err != nil {
		return err
	}
	if item.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	payload := api.GuestItemFromDomain(item)
	if err := g.c.do(ctx, http.MethodPost, "/api/guest/cart", header, payload, nil, guestErrors); err != nil {
		return fmt.Errorf("add guest item: %w", err)
	}

	return nil
}

func (g *guestCart) UpdateQuantity(ctx context.Context, ownerID string, key string, quantity int) error {
	header, err := guestHeader(ownerID)
	if err != nil {
		return err
	}

	payload := api.GuestUpdateRequest{Key: key, Quantity: quantity}
	if err := g.c.do(ctx, http.MethodPatch, "/api/guest/cart", header, payload, nil, guestErrors); err != nil {
		return fmt.Errorf("update guest item: %w", err)
	}

	return nil
}

func (g *guestCart) RemoveItem(ctx context.Context, ownerID string, key string) (bool, error) {
	header, err := guestHeader(ownerID)
	if err != nil {
		return false, err
	}

	path := "/api/guest/cart/item?key=" + url.QueryEscape(key)
	err = g.c.do(ctx, http.MethodDelete, path, header, nil, nil, guestErrors)
	if errors.Is(err, domain.ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove guest item: %w", err)
	}

	return true, nil
}

func (g *guestCart) Clear(ctx context.Context, ownerID string) error {
	header, err := guestHeader(ownerID)
	if err != nil {
		return err
	}

	if err := g.c.do(ctx, http.MethodDelete, "/api/guest/cart", header, nil, nil, guestErrors); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}

	return nil
}
