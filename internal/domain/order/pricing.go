package order

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/money"
)

// PricingPolicy fixes the order of discount vs. delivery application.
type PricingPolicy int

const (
	// DiscountAfterDelivery applies the discount to subtotal + delivery
	// price. This is the active policy.
	DiscountAfterDelivery PricingPolicy = iota
	// DiscountBeforeDelivery would apply the discount to the bare subtotal.
	// Not active; kept so the policy choice stays visible at the call site.
	DiscountBeforeDelivery
)

// Subtotal prices the cart: line totals are recomputed from the captured
// unit prices and quantities, so a malformed line (non-positive quantity,
// overflowing amount) is rejected eagerly.
func Subtotal(items []cart.Item) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, cart.ErrEmpty
	}

	sum := decimal.Zero
	for _, item := range items {
		line, err := money.LineTotal(item.UnitPrice, item.Quantity)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "line %s/%s", item.ProductID, item.VariantID)
		}
		sum = sum.Add(line)
		if err := money.CheckBound(sum); err != nil {
			return decimal.Zero, err
		}
	}
	return sum, nil
}

// GrandTotal composes the final payable amount. discountAmount is already
// clamped to the pre-discount total by the discount resolver, so the result
// is non-negative; the clamp here is a final guard.
func GrandTotal(subtotal, deliveryPrice, discountAmount decimal.Decimal) (decimal.Decimal, error) {
	total := subtotal.Add(deliveryPrice).Sub(discountAmount)
	if err := money.CheckBound(total); err != nil {
		return decimal.Zero, err
	}
	return money.Round(money.ClampNonNegative(total)), nil
}
