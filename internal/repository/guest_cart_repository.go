package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/db"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"golang.org/x/text/currency"
)

// guestCartRepository keeps guest carts in Postgres, one row per line,
// addressed by the composite variant|color|size key.
type guestCartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewGuestCart(pool *pgxpool.Pool) port.CartRepository {
	return &guestCartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewGuestCartWithTx(tx pgx.Tx) port.CartRepository {
	return &guestCartRepository{
		q:    db.New(tx),
		pool: nil,
	}
}

func (r *guestCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	items, err := mapGetCartRowsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *guestCartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if item.ID == "" {
		return fmt.Errorf("item.ID is empty")
	}
	if item.Price.Amount.IsNegative() {
		return domain.ErrInvalidPrice
	}
	quantity, err := toInt32(item.Quantity)
	if err != nil {
		return err
	}

	_, err = withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		// serializes adds per owner so the currency check sees earlier inserts
		if err := q.LockOwner(ctx, ownerID); err != nil {
			return struct{}{}, fmt.Errorf("q.LockOwner: %w", err)
		}

		existing, err := q.GetCartCurrency(ctx, ownerID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return struct{}{}, fmt.Errorf("q.GetCartCurrency: %w", err)
		case existing != item.Price.Currency.String():
			return struct{}{}, domain.ErrCurrencyMismatch
		}

		err = q.AddItem(ctx, db.AddItemParams{
			OwnerID:       ownerID,
			VariantID:     item.ID,
			Color:         item.Color,
			Size:          item.Size,
			Name:          item.Name,
			Image:         item.Image,
			PriceAmount:   item.Price.Amount,
			PriceCurrency: item.Price.Currency.String(),
			Quantity:      quantity,
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.AddItem: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

// UpdateQuantity sets a line's quantity; a non-positive quantity removes the line.
func (r *guestCartRepository) UpdateQuantity(ctx context.Context, ownerID string, key string, quantity int) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if quantity <= 0 {
		deleted, err := r.RemoveItem(ctx, ownerID, key)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrItemNotFound
		}
		return nil
	}

	qty, err := toInt32(quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.UpdateQuantity(ctx, db.UpdateQuantityParams{
		OwnerID:  ownerID,
		ItemKey:  &key,
		Quantity: qty,
	})
	if err != nil {
		return fmt.Errorf("q.UpdateQuantity: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

func (r *guestCartRepository) RemoveItem(ctx context.Context, ownerID string, key string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		OwnerID: ownerID,
		ItemKey: &key,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *guestCartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.q.ClearCart(ctx, ownerID); err != nil {
		return fmt.Errorf("q.ClearCart: %w", err)
	}

	return nil
}

func toInt32(quantity int) (int32, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	if quantity > math.MaxInt32 {
		return 0, fmt.Errorf("quantity[%d] is too large", quantity)
	}
	return int32(quantity), nil
}

func mapGetCartRowToDomain(row db.GetCartRow) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartItem{
		ID:        row.VariantID,
		Name:      row.Name,
		Image:     row.Image,
		Color:     row.Color,
		Size:      row.Size,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:  int(row.Quantity),
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
