// Package cart defines the shopping cart as read-only input to checkout.
// Cart mutation endpoints live outside the checkout core; here the cart is
// only loaded, priced, and cleared.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a user has no open cart.
	ErrNotFound = errors.New("cart not found")
	// ErrEmpty is returned when checkout is attempted on a cart with no items.
	ErrEmpty = errors.New("cart is empty")
)

// Item is a single cart line. UnitPrice and LineTotal were captured when the
// item was added; the cart is the price-of-record at checkout time.
type Item struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Cart holds a user's pending items.
type Cart struct {
	UserID string
	Items  []Item
}

// Store provides cart lookups. Clearing happens inside the checkout
// transaction (see order.CheckoutStore), not through this interface.
type Store interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
}
