package port

import (
	"context"

	"github.com/nikolayk812/shopcart/internal/domain"
)

// CartRepository is the backing store of a cart. Guest and Shopify-backed
// carts both implement it; a session picks one when it starts.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) error
	UpdateQuantity(ctx context.Context, ownerID string, key string, quantity int) error
	RemoveItem(ctx context.Context, ownerID string, key string) (bool, error)
	Clear(ctx context.Context, ownerID string) error
}
