// Package discount validates discount codes and computes discount amounts
// for checkout.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies value% of the running total.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary amount capped at the running total.
	TypeFixed Type = "fixed"
)

var (
	// ErrNotFound is returned when a discount code is unknown.
	ErrNotFound = errors.New("discount not found")
	// ErrNotYetActive is returned before the discount's start date.
	ErrNotYetActive = errors.New("discount not yet active")
	// ErrExpired is returned after the discount's end date.
	ErrExpired = errors.New("discount expired")
	// ErrExhausted is returned when the discount has no remaining uses.
	ErrExhausted = errors.New("discount usage limit reached")
	// ErrInvalid is returned when a discount definition is malformed.
	ErrInvalid = errors.New("invalid discount")
)

// Discount is a promotion code with a validity window and a remaining-uses
// counter. Usability is only authoritative inside the store's conditional
// decrement; the value read here may be stale by commit time.
type Discount struct {
	Code        string
	Description string
	Type        Type
	Value       decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	Usability   int
}

// Validate checks a discount definition before it is created.
func (d *Discount) Validate() error {
	if d.Code == "" {
		return errors.Wrap(ErrInvalid, "code is required")
	}
	switch d.Type {
	case TypePercentage, TypeFixed:
	default:
		return errors.Wrapf(ErrInvalid, "unsupported type %q", d.Type)
	}
	if d.Value.IsNegative() {
		return errors.Wrap(ErrInvalid, "value must not be negative")
	}
	if d.EndDate.Before(d.StartDate) {
		return errors.Wrap(ErrInvalid, "end date precedes start date")
	}
	if d.Usability < 0 {
		return errors.Wrap(ErrInvalid, "usability must not be negative")
	}
	return nil
}

// Applied is a discount as recorded on an order: the code and the amount it
// shaved off the total.
type Applied struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"discountedAmount"`
}

// Store provides discount lookup. Usability consumption is not part of the
// interface: it only ever happens inside the checkout transaction, as a
// conditional decrement that aborts the whole commit when no unit remains.
type Store interface {
	FindByCode(ctx context.Context, code string) (*Discount, error)
	List(ctx context.Context) ([]Discount, error)
}
