package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Resolver validates a discount code against its time window and remaining
// usability and computes the discount amount. It does not consume usability:
// the decrement happens inside the checkout transaction so a discount is
// never consumed for an order that fails to persist.
type Resolver struct {
	store Store
	now   func() time.Time
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve looks up the code, checks its window and usability as of now, and
// returns the applied discount against currentTotal.
func (r *Resolver) Resolve(ctx context.Context, code string, currentTotal decimal.Decimal) (*Applied, error) {
	d, err := r.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup discount")
	}

	now := r.now()
	if now.Before(d.StartDate) {
		return nil, ErrNotYetActive
	}
	if now.After(d.EndDate) {
		return nil, ErrExpired
	}

	// Early reject when already exhausted. The authoritative check is the
	// conditional decrement at commit time; this one only avoids pricing
	// work for codes that are already spent.
	if d.Usability <= 0 {
		return nil, ErrExhausted
	}

	amount, err := Amount(d, currentTotal)
	if err != nil {
		return nil, err
	}

	return &Applied{Code: d.Code, Amount: amount}, nil
}
