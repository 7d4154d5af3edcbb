// Package cartstore holds the in-memory view of one session's cart and keeps
// it in sync with the cart's backing repository.
package cartstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State is a snapshot of the store. Items is a copy and safe to keep.
type State struct {
	Items       []domain.CartItem
	CheckoutURL string
	IsOpen      bool
	Subtotal    decimal.Decimal
	ItemCount   int

	// Loading lists the keys of lines with a mutation in flight.
	Loading []string
}

func (s State) IsLoading(key string) bool {
	return slices.Contains(s.Loading, key)
}

// Store is the cart of one session. The repository decides whether it is a
// guest or an authenticated cart; the store itself does not branch on that.
type Store struct {
	repo     port.CartRepository
	ownerID  string
	logger   *zap.Logger
	notifier Notifier

	mu          sync.Mutex
	items       []domain.CartItem
	checkoutURL string
	isOpen      bool
	subtotal    decimal.Decimal
	itemCount   int
	loading     map[string]int
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func New(repo port.CartRepository, ownerID string, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	s := &Store{
		repo:     repo,
		ownerID:  ownerID,
		logger:   zap.NewNop(),
		notifier: nopNotifier{},
		subtotal: decimal.Zero,
		loading:  map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) OwnerID() string {
	return s.ownerID
}

// Hydrate replaces the in-memory cart with the repository's current state.
func (s *Store) Hydrate(ctx context.Context) error {
	cart, err := s.repo.GetCart(ctx, s.ownerID)
	if err != nil {
		s.fail("Failed to load cart", err)
		return fmt.Errorf("repo.GetCart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(cart)

	return nil
}

func (s *Store) AddItem(ctx context.Context, item domain.CartItem, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	item.Quantity = quantity

	if err := s.repo.AddItem(ctx, s.ownerID, item); err != nil {
		s.fail("Failed to add item to cart", err, zap.String("item", item.Key()))
		return fmt.Errorf("repo.AddItem: %w", err)
	}

	s.notifier.Notify(Notification{Level: LevelSuccess, Message: "Added to cart"})

	return s.Hydrate(ctx)
}

// UpdateQuantity sets a line's quantity. Guest carts treat a non-positive
// quantity as removal; Shopify-backed carts reject it.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) error {
	done := s.startLoading(key)
	defer done()

	if err := s.repo.UpdateQuantity(ctx, s.ownerID, key, quantity); err != nil {
		s.fail("Failed to update quantity", err, zap.String("item", key))
		return fmt.Errorf("repo.UpdateQuantity: %w", err)
	}

	return s.Hydrate(ctx)
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	done := s.startLoading(key)
	defer done()

	removed, err := s.repo.RemoveItem(ctx, s.ownerID, key)
	if err != nil {
		s.fail("Failed to remove item", err, zap.String("item", key))
		return fmt.Errorf("repo.RemoveItem: %w", err)
	}
	if !removed {
		s.logger.Debug("remove of absent line", zap.String("item", key))
	}

	return s.Hydrate(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx, s.ownerID); err != nil {
		s.fail("Failed to clear cart", err)
		return fmt.Errorf("repo.Clear: %w", err)
	}

	return s.Hydrate(ctx)
}

// MigrateGuestCart replays every line of a guest cart into this store's
// repository, one at a time, then clears the guest cart and re-hydrates.
//
// It is not atomic. When an add fails the loop stops and the guest cart keeps
// the lines that were not migrated; lines already migrated are removed from it
// so a second attempt does not add them twice.
func (s *Store) MigrateGuestCart(ctx context.Context, guest port.CartRepository, guestOwnerID string) (int, error) {
	guestCart, err := guest.GetCart(ctx, guestOwnerID)
	if err != nil {
		s.fail("Failed to read guest cart", err)
		return 0, fmt.Errorf("guest.GetCart: %w", err)
	}
	if len(guestCart.Items) == 0 {
		return 0, nil
	}

	migrated := 0
	for _, item := range guestCart.Items {
		line := item
		line.LineID = ""

		if err := s.repo.AddItem(ctx, s.ownerID, line); err != nil {
			s.fail("Failed to merge guest cart", err,
				zap.String("item", item.Key()),
				zap.Int("migrated", migrated),
				zap.Int("total", len(guestCart.Items)))
			_ = s.Hydrate(ctx)
			return migrated, fmt.Errorf("repo.AddItem[%s]: %w", item.Key(), err)
		}
		migrated++

		if _, err := guest.RemoveItem(ctx, guestOwnerID, item.Key()); err != nil {
			s.logger.Warn("migrated line left in guest cart", zap.String("item", item.Key()), zap.Error(err))
		}
	}

	if err := guest.Clear(ctx, guestOwnerID); err != nil {
		s.fail("Failed to clear guest cart", err)
		return migrated, fmt.Errorf("guest.Clear: %w", err)
	}

	s.logger.Info("guest cart migrated", zap.String("owner", s.ownerID), zap.Int("items", migrated))

	return migrated, s.Hydrate(ctx)
}

func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
}

func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = true
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = false
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	loading := make([]string, 0, len(s.loading))
	for key := range s.loading {
		loading = append(loading, key)
	}
	slices.Sort(loading)

	return State{
		Items:       slices.Clone(s.items),
		CheckoutURL: s.checkoutURL,
		IsOpen:      s.isOpen,
		Subtotal:    s.subtotal,
		ItemCount:   s.itemCount,
		Loading:     loading,
	}
}

func (s *Store) applyLocked(cart domain.Cart) {
	s.items = slices.Clone(cart.Items)
	s.checkoutURL = cart.CheckoutURL
	s.subtotal = cart.Subtotal()
	s.itemCount = cart.ItemCount()
}

// startLoading marks key as in flight until the returned func is called.
// Overlapping mutations of one line are counted so the flag stays set until
// the last of them finishes.
func (s *Store) startLoading(key string) func() {
	s.mu.Lock()
	s.loading[key]++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.loading[key] <= 1 {
			delete(s.loading, key)
			return
		}
		s.loading[key]--
	}
}

func (s *Store) fail(message string, err error, fields ...zap.Field) {
	s.logger.Error(message, append(fields, zap.String("owner", s.ownerID), zap.Error(err))...)
	s.notifier.Notify(Notification{Level: LevelError, Message: message})
}
