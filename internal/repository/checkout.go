package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/order"
)

const deleteCartSQL = `DELETE FROM carts WHERE user_id = $1`

var _ order.CheckoutStore = (*CheckoutStore)(nil)

// CheckoutStore commits checkouts as a single Postgres transaction: order
// insert, conditional discount decrement, cart delete. A caller-side
// cancellation before Commit rolls everything back.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// CommitCheckout persists the order, consumes one unit of discount
// usability when the order carries a code, and deletes the user's cart.
//
// The decrement is a conditional UPDATE (usability > 0): when it affects
// zero rows the transaction aborts with discount.ErrExhausted, so two
// concurrent checkouts can never both consume the last unit. The cart
// delete affecting zero rows means a concurrent checkout already consumed
// the cart; the transaction aborts with cart.ErrNotFound and no order row
// survives.
func (s *CheckoutStore) CommitCheckout(ctx context.Context, o *order.Order) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	args, err := insertOrderArgs(o)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertOrderSQL, args...); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if o.Discount != nil {
		tag, err := tx.Exec(ctx, decrementUsabilitySQL, o.Discount.Code)
		if err != nil {
			return fmt.Errorf("decrementing usability for discount %q: %w", o.Discount.Code, err)
		}
		if tag.RowsAffected() == 0 {
			return discount.ErrExhausted
		}
	}

	tag, err := tx.Exec(ctx, deleteCartSQL, o.UserID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", o.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout for order %q: %w", o.ID, err)
	}
	return nil
}
