package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Amount computes how much the discount shaves off currentTotal. The result
// is clamped to [0, currentTotal] so the payable total can never go negative,
// and rounded to two decimal places.
func Amount(d *Discount, currentTotal decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch d.Type {
	case TypePercentage:
		amount = currentTotal.Mul(d.Value).Div(hundred)
	case TypeFixed:
		amount = d.Value
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", d.Type)
	}

	amount = decimal.Min(amount, currentTotal)
	return money.Round(money.ClampNonNegative(amount)), nil
}
