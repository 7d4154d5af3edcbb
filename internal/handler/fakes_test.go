package handler_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/shopcart/internal/backend"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type fakeShopify struct {
	mu         sync.Mutex
	carts      map[string]*domain.Cart
	attributes map[string]map[string]string
	seq        int
	calls      []string
	// pageSize > 0 caps the lines returned per cart read, like a paged query.
	pageSize int
}

func newFakeShopify() *fakeShopify {
	return &fakeShopify{
		carts:      map[string]*domain.Cart{},
		attributes: map[string]map[string]string{},
	}
}

func (f *fakeShopify) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeShopify) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeShopify) CreateCart(_ context.Context, lines []port.CartLineInput, attributes map[string]string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCart")

	f.seq++
	id := fmt.Sprintf("gid://shopify/Cart/%d", f.seq)
	cart := &domain.Cart{ID: id, CheckoutURL: "https://shop.example/checkout/" + id}
	f.carts[id] = cart
	f.attributes[id] = attributes
	f.addLocked(cart, lines)

	return *cart, nil
}

func (f *fakeShopify) GetCart(_ context.Context, cartID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCart")

	cart, ok := f.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return f.pageLocked(cart), nil
}

func (f *fakeShopify) AddLines(_ context.Context, cartID string, lines []port.CartLineInput) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddLines")

	cart, ok := f.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	f.addLocked(cart, lines)
	return copyCart(cart), nil
}

func (f *fakeShopify) UpdateLines(_ context.Context, cartID string, lines []port.CartLineUpdate) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateLines")

	cart, ok := f.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	for _, line := range lines {
		if err := cart.SetQuantity(line.LineID, line.Quantity); err != nil {
			return domain.Cart{}, err
		}
	}
	return copyCart(cart), nil
}

func (f *fakeShopify) RemoveLines(_ context.Context, cartID string, lineIDs []string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveLines")

	cart, ok := f.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	for _, id := range lineIDs {
		cart.Remove(id)
	}
	return f.pageLocked(cart), nil
}

func (f *fakeShopify) UpdateAttributes(_ context.Context, cartID string, attributes map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateAttributes")

	if _, ok := f.carts[cartID]; !ok {
		return domain.ErrCartNotFound
	}
	f.attributes[cartID] = attributes
	return nil
}

func (f *fakeShopify) addLocked(cart *domain.Cart, lines []port.CartLineInput) {
	for _, line := range lines {
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ID == line.MerchandiseID {
				cart.Items[i].Quantity += line.Quantity
				merged = true
			}
		}
		if merged {
			continue
		}

		f.seq++
		cart.Items = append(cart.Items, domain.CartItem{
			ID:       line.MerchandiseID,
			Name:     "Variant " + line.MerchandiseID,
			Price:    domain.Money{Amount: decimal.NewFromInt(20), Currency: currency.USD},
			Quantity: line.Quantity,
			LineID:   fmt.Sprintf("gid://shopify/CartLine/%d", f.seq),
		})
	}
}

func (f *fakeShopify) pageLocked(c *domain.Cart) domain.Cart {
	out := copyCart(c)
	if f.pageSize > 0 && len(out.Items) > f.pageSize {
		out.Items = out.Items[:f.pageSize]
	}
	return out
}

func copyCart(c *domain.Cart) domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	return out
}

type fakeBackend struct {
	mu      sync.Mutex
	cartIDs map[string]string
	users   map[string]port.BackendUser
	emails  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cartIDs: map[string]string{},
		users:   map[string]port.BackendUser{},
	}
}

func (b *fakeBackend) Login(_ context.Context, creds port.Credentials) (port.BackendUser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[creds.Email+":"+creds.Password]
	if !ok {
		return port.BackendUser{}, backend.ErrUnauthorized
	}
	return user, nil
}

func (b *fakeBackend) GoogleSignIn(_ context.Context, idToken string) (port.BackendUser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users["google:"+idToken]
	if !ok {
		return port.BackendUser{}, backend.ErrUnauthorized
	}
	return user, nil
}

func (b *fakeBackend) GetCartID(_ context.Context, userID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cartIDs[userID], nil
}

func (b *fakeBackend) SaveCartID(_ context.Context, userID, cartID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cartIDs[userID] = cartID
	return nil
}

func (b *fakeBackend) SubscribeNewsletter(_ context.Context, email string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emails = append(b.emails, email)
	return nil
}

// memoryGuest mirrors the Postgres guest repository's semantics.
type memoryGuest struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMemoryGuest() *memoryGuest {
	return &memoryGuest{carts: map[string]*domain.Cart{}}
}

func (g *memoryGuest) cart(ownerID string) *domain.Cart {
	c, ok := g.carts[ownerID]
	if !ok {
		c = &domain.Cart{OwnerID: ownerID}
		g.carts[ownerID] = c
	}
	return c
}

func (g *memoryGuest) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyCart(g.cart(ownerID)), nil
}

func (g *memoryGuest) AddItem(_ context.Context, ownerID string, item domain.CartItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cart(ownerID).Add(item)
}

func (g *memoryGuest) UpdateQuantity(_ context.Context, ownerID string, key string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cart(ownerID).SetQuantity(key, quantity)
}

func (g *memoryGuest) RemoveItem(_ context.Context, ownerID string, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cart(ownerID).Remove(key), nil
}

func (g *memoryGuest) Clear(_ context.Context, ownerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cart(ownerID).Clear()
	return nil
}
