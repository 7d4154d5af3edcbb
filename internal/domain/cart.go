package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Cart struct {
	OwnerID string
	Items   []CartItem

	// ID and CheckoutURL are only set for carts backed by Shopify.
	ID          string
	CheckoutURL string
}

type CartItem struct {
	ID       string
	Name     string
	Image    string
	Color    string
	Size     string
	Price    Money
	Quantity int

	// LineID is the Shopify cart line id; empty for guest items.
	LineID string

	CreatedAt time.Time
}

// Key identifies a line inside its cart. Remote lines are addressed by their
// Shopify line id, guest lines by variant id, color and size.
func (i CartItem) Key() string {
	if i.LineID != "" {
		return i.LineID
	}
	return ItemKey(i.ID, i.Color, i.Size)
}

func ItemKey(id, color, size string) string {
	return strings.Join([]string{id, color, size}, "|")
}

// Subtotal is the sum of price times quantity over all lines.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Times(item.Quantity).Amount)
	}
	return total
}

// ItemCount is the sum of line quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Currency reports the currency of the first line, or XXX for an empty cart.
func (c Cart) Currency() currency.Unit {
	if len(c.Items) == 0 {
		return currency.XXX
	}
	return c.Items[0].Price.Currency
}

// Add merges item into the cart: a line with the same key gets its quantity
// increased, otherwise the item is appended.
func (c *Cart) Add(item CartItem) error {
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if item.Price.Amount.IsNegative() {
		return ErrInvalidPrice
	}
	if len(c.Items) > 0 && c.Currency().String() != item.Price.Currency.String() {
		return ErrCurrencyMismatch
	}

	if idx := c.indexOf(item.Key()); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return nil
	}

	c.Items = append(c.Items, item)
	return nil
}

// SetQuantity sets the quantity of the line with the given key.
// A non-positive quantity removes the line.
func (c *Cart) SetQuantity(key string, quantity int) error {
	idx := c.indexOf(key)
	if idx < 0 {
		return ErrItemNotFound
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return nil
	}

	c.Items[idx].Quantity = quantity
	return nil
}

// Remove deletes the line with the given key and reports whether it existed.
func (c *Cart) Remove(key string) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) Item(key string) (CartItem, bool) {
	if idx := c.indexOf(key); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

func (c Cart) indexOf(key string) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}
