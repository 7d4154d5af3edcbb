package cartstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nikolayk812/shopcart/internal/cartstore"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_AddItemMergesGuestLines(t *testing.T) {
	store, _ := newGuestStore(t)
	ctx := t.Context()

	item := item("v1", "Black", "M", "20")

	require.NoError(t, store.AddItem(ctx, item, 2))
	state := store.State()
	assert.True(t, decimal.NewFromInt(40).Equal(state.Subtotal))
	assert.Equal(t, 2, state.ItemCount)

	require.NoError(t, store.AddItem(ctx, item, 1))
	state = store.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 3, state.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(60).Equal(state.Subtotal))
	assert.Equal(t, 3, state.ItemCount)
}

func TestStore_AddItemInvalidQuantity(t *testing.T) {
	store, _ := newGuestStore(t)

	err := store.AddItem(t.Context(), item("v1", "Black", "M", "20"), 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestStore_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := t.Context()
	key := domain.ItemKey("v1", "Black", "M")

	seed := func(store *cartstore.Store) {
		require.NoError(t, store.AddItem(ctx, item("v1", "Black", "M", "20"), 2))
		require.NoError(t, store.AddItem(ctx, item("v2", "White", "S", "5.50"), 3))
	}

	updated, _ := newGuestStore(t)
	seed(updated)
	require.NoError(t, updated.UpdateQuantity(ctx, key, 0))

	removed, _ := newGuestStore(t)
	seed(removed)
	require.NoError(t, removed.RemoveItem(ctx, key))

	assert.Equal(t, removed.State().Items, updated.State().Items)
	assert.Equal(t, 3, updated.State().ItemCount)
	assert.True(t, decimal.RequireFromString("16.5").Equal(updated.State().Subtotal))
}

func TestStore_UpdateQuantity(t *testing.T) {
	store, _ := newGuestStore(t)
	ctx := t.Context()

	require.NoError(t, store.AddItem(ctx, item("v1", "Black", "M", "20"), 1))
	require.NoError(t, store.UpdateQuantity(ctx, domain.ItemKey("v1", "Black", "M"), 4))

	state := store.State()
	assert.Equal(t, 4, state.ItemCount)
	assert.True(t, decimal.NewFromInt(80).Equal(state.Subtotal))
	assert.Empty(t, state.Loading)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newGuestStore(t)
	ctx := t.Context()

	require.NoError(t, store.AddItem(ctx, item("v1", "Black", "M", "20"), 2))
	require.NoError(t, store.AddItem(ctx, item("v2", "Black", "L", "30"), 1))

	require.NoError(t, store.Clear(ctx))

	state := store.State()
	assert.Empty(t, state.Items)
	assert.True(t, state.Subtotal.IsZero())
	assert.Zero(t, state.ItemCount)
}

func TestStore_Hydrate(t *testing.T) {
	repo := newMemoryRepo()
	ctx := t.Context()
	require.NoError(t, repo.AddItem(ctx, "guest-1", item("v1", "Black", "M", "20")))

	store, err := cartstore.New(repo, "guest-1")
	require.NoError(t, err)
	assert.Empty(t, store.State().Items)

	require.NoError(t, store.Hydrate(ctx))
	assert.Len(t, store.State().Items, 1)

	// a full replace, not a merge
	require.NoError(t, repo.Clear(ctx, "guest-1"))
	require.NoError(t, store.Hydrate(ctx))
	assert.Empty(t, store.State().Items)
}

func TestStore_FailureNotifies(t *testing.T) {
	repo := &failingRepo{memoryRepo: newMemoryRepo(), getErr: errors.New("network down")}
	notifier := &recordingNotifier{}

	store, err := cartstore.New(repo, "u1", cartstore.WithNotifier(notifier))
	require.NoError(t, err)

	err = store.Hydrate(t.Context())
	require.ErrorContains(t, err, "network down")

	assert.Equal(t, []cartstore.Notification{{Level: cartstore.LevelError, Message: "Failed to load cart"}}, notifier.all())
}

func TestStore_MigrateGuestCart(t *testing.T) {
	ctx := t.Context()

	guest := newMemoryRepo()
	require.NoError(t, guest.AddItem(ctx, "guest-1", withQty(item("v1", "Black", "M", "20"), 2)))
	require.NoError(t, guest.AddItem(ctx, "guest-1", withQty(item("v2", "White", "S", "10"), 1)))

	remote := newMemoryRepo()
	require.NoError(t, remote.AddItem(ctx, "u1", withQty(item("v1", "Black", "M", "20"), 1)))

	store, err := cartstore.New(remote, "u1")
	require.NoError(t, err)

	migrated, err := store.MigrateGuestCart(ctx, guest, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)

	guestCart, err := guest.GetCart(ctx, "guest-1")
	require.NoError(t, err)
	assert.Empty(t, guestCart.Items)

	state := store.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, 4, state.ItemCount)
	assert.True(t, decimal.NewFromInt(70).Equal(state.Subtotal))
}

func TestStore_MigrateGuestCartEmpty(t *testing.T) {
	store, err := cartstore.New(newMemoryRepo(), "u1")
	require.NoError(t, err)

	migrated, err := store.MigrateGuestCart(t.Context(), newMemoryRepo(), "guest-1")
	require.NoError(t, err)
	assert.Zero(t, migrated)
}

func TestStore_MigrateGuestCartPartialFailure(t *testing.T) {
	ctx := t.Context()

	guest := newMemoryRepo()
	require.NoError(t, guest.AddItem(ctx, "guest-1", item("v1", "Black", "M", "20")))
	require.NoError(t, guest.AddItem(ctx, "guest-1", item("v2", "White", "S", "10")))

	remote := &failingRepo{memoryRepo: newMemoryRepo(), failAddAt: 2, addErr: errors.New("shopify unavailable")}
	notifier := &recordingNotifier{}

	store, err := cartstore.New(remote, "u1", cartstore.WithNotifier(notifier))
	require.NoError(t, err)

	migrated, err := store.MigrateGuestCart(ctx, guest, "guest-1")
	require.ErrorContains(t, err, "shopify unavailable")
	assert.Equal(t, 1, migrated)

	guestCart, err := guest.GetCart(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, guestCart.Items, 1, "guest cart must not be cleared")
	assert.Equal(t, "v2", guestCart.Items[0].ID)

	remoteCart, err := remote.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, remoteCart.Items, 1)
	assert.Equal(t, "v1", remoteCart.Items[0].ID)

	assert.Contains(t, notifier.all(), cartstore.Notification{Level: cartstore.LevelError, Message: "Failed to merge guest cart"})
}

func TestStore_LoadingFlagDuringUpdate(t *testing.T) {
	ctx := t.Context()
	key := domain.ItemKey("v1", "Black", "M")

	repo := &blockingRepo{memoryRepo: newMemoryRepo(), entered: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, repo.AddItem(ctx, "guest-1", item("v1", "Black", "M", "20")))

	store, err := cartstore.New(repo, "guest-1")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- store.UpdateQuantity(ctx, key, 3)
	}()

	<-repo.entered
	state := store.State()
	assert.True(t, state.IsLoading(key))
	assert.False(t, state.IsLoading(domain.ItemKey("v2", "Black", "M")))

	close(repo.release)
	require.NoError(t, <-errCh)

	state = store.State()
	assert.False(t, state.IsLoading(key))
	assert.Equal(t, 3, state.ItemCount)
}

func TestStore_LoadingFlagOverlappingUpdates(t *testing.T) {
	ctx := t.Context()
	key := domain.ItemKey("v1", "Black", "M")

	repo := &gatedRepo{memoryRepo: newMemoryRepo(), entered: make(chan struct{}, 2), release: make(chan struct{})}
	require.NoError(t, repo.AddItem(ctx, "guest-1", item("v1", "Black", "M", "20")))

	store, err := cartstore.New(repo, "guest-1")
	require.NoError(t, err)

	errCh := make(chan error, 2)
	for _, qty := range []int{3, 4} {
		go func() {
			errCh <- store.UpdateQuantity(ctx, key, qty)
		}()
	}
	<-repo.entered
	<-repo.entered

	repo.release <- struct{}{}
	require.NoError(t, <-errCh)
	assert.True(t, store.State().IsLoading(key), "second update still in flight")

	repo.release <- struct{}{}
	require.NoError(t, <-errCh)
	assert.False(t, store.State().IsLoading(key))
	assert.Empty(t, store.State().Loading)
}

func TestStore_Drawer(t *testing.T) {
	store, _ := newGuestStore(t)

	assert.False(t, store.State().IsOpen)
	store.Toggle()
	assert.True(t, store.State().IsOpen)
	store.Toggle()
	assert.False(t, store.State().IsOpen)
	store.Open()
	store.Open()
	assert.True(t, store.State().IsOpen)
	store.Close()
	assert.False(t, store.State().IsOpen)
}

func TestNew_Validation(t *testing.T) {
	_, err := cartstore.New(nil, "u1")
	require.EqualError(t, err, "repo is nil")

	_, err = cartstore.New(newMemoryRepo(), "")
	require.EqualError(t, err, "ownerID is empty")
}

func newGuestStore(t *testing.T) (*cartstore.Store, *memoryRepo) {
	t.Helper()

	repo := newMemoryRepo()
	store, err := cartstore.New(repo, "guest-1")
	require.NoError(t, err)

	return store, repo
}

func item(id, color, size, price string) domain.CartItem {
	return domain.CartItem{
		ID:       id,
		Name:     "Product " + id,
		Color:    color,
		Size:     size,
		Price:    domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.USD},
		Quantity: 1,
	}
}

func withQty(i domain.CartItem, qty int) domain.CartItem {
	i.Quantity = qty
	return i
}

// memoryRepo is a guest-semantics repository backed by domain.Cart.
type memoryRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[string]*domain.Cart{}}
}

func (r *memoryRepo) cart(ownerID string) *domain.Cart {
	c, ok := r.carts[ownerID]
	if !ok {
		c = &domain.Cart{OwnerID: ownerID}
		r.carts[ownerID] = c
	}
	return c
}

func (r *memoryRepo) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.cart(ownerID)
	return domain.Cart{OwnerID: ownerID, Items: append([]domain.CartItem(nil), c.Items...)}, nil
}

func (r *memoryRepo) AddItem(_ context.Context, ownerID string, item domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart(ownerID).Add(item)
}

func (r *memoryRepo) UpdateQuantity(_ context.Context, ownerID string, key string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart(ownerID).SetQuantity(key, quantity)
}

func (r *memoryRepo) RemoveItem(_ context.Context, ownerID string, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart(ownerID).Remove(key), nil
}

func (r *memoryRepo) Clear(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart(ownerID).Clear()
	return nil
}

type failingRepo struct {
	*memoryRepo

	getErr    error
	addErr    error
	failAddAt int
	adds      int
}

func (r *failingRepo) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if r.getErr != nil {
		return domain.Cart{}, r.getErr
	}
	return r.memoryRepo.GetCart(ctx, ownerID)
}

func (r *failingRepo) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	r.adds++
	if r.addErr != nil && r.adds == r.failAddAt {
		return r.addErr
	}
	return r.memoryRepo.AddItem(ctx, ownerID, item)
}

type blockingRepo struct {
	*memoryRepo

	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) UpdateQuantity(ctx context.Context, ownerID string, key string, quantity int) error {
	close(r.entered)
	<-r.release
	return r.memoryRepo.UpdateQuantity(ctx, ownerID, key, quantity)
}

// gatedRepo lets each UpdateQuantity call through on its own receive from release.
type gatedRepo struct {
	*memoryRepo

	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) UpdateQuantity(ctx context.Context, ownerID string, key string, quantity int) error {
	r.entered <- struct{}{}
	<-r.release
	return r.memoryRepo.UpdateQuantity(ctx, ownerID, key, quantity)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []cartstore.Notification
}

func (n *recordingNotifier) Notify(note cartstore.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []cartstore.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]cartstore.Notification(nil), n.notes...)
}
