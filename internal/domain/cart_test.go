package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCart_Add(t *testing.T) {
	tests := []struct {
		name          string
		adds          []domain.CartItem
		wantLines     int
		wantSubtotal  string
		wantItemCount int
		wantError     error
	}{
		{
			name: "same variant color and size: merged",
			adds: []domain.CartItem{
				usdItem("v1", "Black", "M", "20", 2),
				usdItem("v1", "Black", "M", "20", 1),
			},
			wantLines:     1,
			wantSubtotal:  "60",
			wantItemCount: 3,
		},
		{
			name: "same variant different size: separate lines",
			adds: []domain.CartItem{
				usdItem("v1", "Black", "M", "20", 1),
				usdItem("v1", "Black", "L", "20", 1),
			},
			wantLines:     2,
			wantSubtotal:  "40",
			wantItemCount: 2,
		},
		{
			name: "fractional prices: exact subtotal",
			adds: []domain.CartItem{
				usdItem("v1", "Red", "S", "0.10", 3),
				usdItem("v2", "Red", "S", "0.20", 1),
			},
			wantLines:     2,
			wantSubtotal:  "0.5",
			wantItemCount: 4,
		},
		{
			name:      "zero quantity: error",
			adds:      []domain.CartItem{usdItem("v1", "Black", "M", "20", 0)},
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name: "currency mismatch: error",
			adds: []domain.CartItem{
				usdItem("v1", "Black", "M", "20", 1),
				{ID: "v2", Quantity: 1, Price: domain.Money{Amount: decimal.NewFromInt(5), Currency: currency.EUR}},
			},
			wantError: domain.ErrCurrencyMismatch,
		},
		{
			name:      "negative price: error",
			adds:      []domain.CartItem{usdItem("v1", "Black", "M", "-20", 2)},
			wantError: domain.ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cart domain.Cart

			var err error
			for _, item := range tt.adds {
				if err = cart.Add(item); err != nil {
					break
				}
			}
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Len(t, cart.Items, tt.wantLines)
			assert.True(t, decimal.RequireFromString(tt.wantSubtotal).Equal(cart.Subtotal()), "subtotal %s", cart.Subtotal())
			assert.Equal(t, tt.wantItemCount, cart.ItemCount())
		})
	}
}

func TestCart_AddRepeatedSumsQuantities(t *testing.T) {
	var cart domain.Cart

	total := 0
	for range gofakeit.IntRange(1, 20) {
		qty := gofakeit.IntRange(1, 5)
		total += qty
		require.NoError(t, cart.Add(usdItem("v1", "Black", "M", "20", qty)))
	}

	require.Len(t, cart.Items, 1)
	assert.Equal(t, total, cart.Items[0].Quantity)
	assert.Equal(t, total, cart.ItemCount())
	assert.True(t, decimal.NewFromInt(int64(20*total)).Equal(cart.Subtotal()))
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	build := func() domain.Cart {
		var c domain.Cart
		require.NoError(t, c.Add(usdItem("v1", "Black", "M", "20", 2)))
		require.NoError(t, c.Add(usdItem("v2", "White", "S", "15", 1)))
		return c
	}
	key := domain.ItemKey("v1", "Black", "M")

	updated := build()
	require.NoError(t, updated.SetQuantity(key, 0))

	removed := build()
	assert.True(t, removed.Remove(key))

	assert.Equal(t, removed.Items, updated.Items)
	assert.Equal(t, 1, updated.ItemCount())
	assert.True(t, decimal.NewFromInt(15).Equal(updated.Subtotal()))
}

func TestCart_SetQuantity(t *testing.T) {
	var cart domain.Cart
	require.NoError(t, cart.Add(usdItem("v1", "Black", "M", "20", 2)))

	require.NoError(t, cart.SetQuantity(domain.ItemKey("v1", "Black", "M"), 5))
	assert.Equal(t, 5, cart.ItemCount())
	assert.True(t, decimal.NewFromInt(100).Equal(cart.Subtotal()))

	err := cart.SetQuantity(domain.ItemKey("v9", "Black", "M"), 1)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCart_Clear(t *testing.T) {
	var cart domain.Cart
	require.NoError(t, cart.Add(usdItem("v1", "Black", "M", "20", 2)))

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.True(t, cart.Subtotal().IsZero())
	assert.Zero(t, cart.ItemCount())
	assert.Equal(t, currency.XXX, cart.Currency())
}

func TestCartItem_Key(t *testing.T) {
	guest := usdItem("v1", "Black", "M", "20", 1)
	assert.Equal(t, "v1|Black|M", guest.Key())

	remote := guest
	remote.LineID = "gid://shopify/CartLine/1"
	assert.Equal(t, "gid://shopify/CartLine/1", remote.Key())
}

func TestParseMoney(t *testing.T) {
	m, err := domain.ParseMoney("19.99", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency.String())
	assert.True(t, decimal.RequireFromString("39.98").Equal(m.Times(2).Amount))

	_, err = domain.ParseMoney("abc", "USD")
	require.Error(t, err)

	_, err = domain.ParseMoney("1.00", "NOPE")
	require.Error(t, err)
}

func usdItem(id, color, size, price string, qty int) domain.CartItem {
	return domain.CartItem{
		ID:       id,
		Name:     gofakeit.ProductName(),
		Color:    color,
		Size:     size,
		Price:    domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.USD},
		Quantity: qty,
	}
}
