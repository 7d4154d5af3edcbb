package port

import (
	"context"

	"github.com/nikolayk812/shopcart/internal/domain"
)

type CartLineInput struct {
	MerchandiseID string
	Quantity      int
}

type CartLineUpdate struct {
	LineID   string
	Quantity int
}

// ShopifyCarts is the subset of the Storefront API the cart routes use.
// A cart Shopify no longer knows about is reported as domain.ErrCartNotFound.
type ShopifyCarts interface {
	CreateCart(ctx context.Context, lines []CartLineInput, attributes map[string]string) (domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []CartLineInput) (domain.Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []CartLineUpdate) (domain.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (domain.Cart, error)
	UpdateAttributes(ctx context.Context, cartID string, attributes map[string]string) error
}
