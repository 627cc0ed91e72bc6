// Package money provides the monetary primitives shared by the checkout
// core. Amounts are shopspring decimals (mapped to NUMERIC columns), never
// binary floats, so discount/delivery composition cannot drift.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned for zero or negative line quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrAmountOverflow is returned when an amount exceeds MaxAmount.
	ErrAmountOverflow = errors.New("monetary amount overflow")
)

// MaxAmount bounds any single monetary amount the engine will produce.
// NUMERIC(12,2) columns cap stored values at the same magnitude.
var MaxAmount = decimal.New(1, 12) // 10^12

// LineTotal returns unitPrice * quantity, guarding quantity positivity and
// the amount bound.
func LineTotal(unitPrice decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := CheckBound(total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CheckBound returns ErrAmountOverflow when the amount's absolute value
// exceeds MaxAmount.
func CheckBound(amount decimal.Decimal) error {
	if amount.Abs().GreaterThan(MaxAmount) {
		return ErrAmountOverflow
	}
	return nil
}

// ClampNonNegative floors the amount at zero.
func ClampNonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Round normalizes an amount to two decimal places.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
