package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
)

// remoteCart talks to /api/shopify/*. ownerID is the signed-in user id; the
// line keys it accepts are Shopify line ids.
type remoteCart struct {
	c *client
}

func NewRemoteCart(baseURL, sessionToken string, opts ...Option) (port.CartRepository, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("sessionToken is empty")
	}

	c, err := newClient(baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("newClient: %w", err)
	}
	c.header.Set("Authorization", "Bearer "+sessionToken)

	return &remoteCart{c: c}, nil
}

var remoteErrors = statusErrors{http.StatusNotFound: domain.ErrCartNotFound}

func (r *remoteCart) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	var cart api.Cart
	if err := r.c.do(ctx, http.MethodGet, "/api/shopify/getCart", nil, nil, &cart, remoteErrors); err != nil {
		return domain.Cart{}, fmt.Errorf("getCart: %w", err)
	}

	out, err := cart.ToDomain(ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.ToDomain: %w", err)
	}

	return out, nil
}

func (r *remoteCart) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if item.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	payload := api.AddItemRequest{MerchandiseID: item.ID, Quantity: item.Quantity, UserID: ownerID}
	if err := r.c.do(ctx, http.MethodPost, "/api/shopify/addItemToCart", nil, payload, nil, remoteErrors); err != nil {
		return fmt.Errorf("addItemToCart: %w", err)
	}

	return nil
}

// UpdateQuantity rejects a non-positive quantity; remove the line instead.
func (r *remoteCart) UpdateQuantity(ctx context.Context, ownerID string, lineID string, quantity int) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	payload := api.UpdateCartRequest{LineID: lineID, Quantity: quantity}
	if err := r.c.do(ctx, http.MethodPost, "/api/shopify/updateCart", nil, payload, nil, remoteErrors); err != nil {
		return fmt.Errorf("updateCart: %w", err)
	}

	return nil
}

func (r *remoteCart) RemoveItem(ctx context.Context, ownerID string, lineID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	payload := api.RemoveItemRequest{LineID: lineID}
	if err := r.c.do(ctx, http.MethodPost, "/api/shopify/removeItemFromCart", nil, payload, nil, remoteErrors); err != nil {
		return false, fmt.Errorf("removeItemFromCart: %w", err)
	}

	return true, nil
}

func (r *remoteCart) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if err := r.c.do(ctx, http.MethodPost, "/api/shopify/clearCart", nil, nil, nil, remoteErrors); err != nil {
		return fmt.Errorf("clearCart: %w", err)
	}

	return nil
}
