package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/payment"
)

const getPaymentMethodSQL = `SELECT id, name, code, description, payment_handler, active
	FROM payment_methods WHERE id = $1`

var _ payment.Registry = (*PaymentRegistry)(nil)

// PaymentRegistry implements payment.Registry backed by PostgreSQL.
type PaymentRegistry struct {
	pool *pgxpool.Pool
}

// NewPaymentRegistry returns a PaymentRegistry that uses the given pool.
func NewPaymentRegistry(pool *pgxpool.Pool) *PaymentRegistry {
	return &PaymentRegistry{pool: pool}
}

// Get looks up a payment method by id. Inactive methods are returned as-is;
// the service decides whether they may be bound.
// Returns payment.ErrMethodNotFound when the id is unknown.
func (r *PaymentRegistry) Get(ctx context.Context, id string) (*payment.Method, error) {
	rows, err := r.pool.Query(ctx, getPaymentMethodSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading payment method %q: %w", id, err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (payment.Method, error) {
		var pm payment.Method
		err := row.Scan(&pm.ID, &pm.Name, &pm.Code, &pm.Description, &pm.PaymentHandler, &pm.Active)
		return pm, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrMethodNotFound
		}
		return nil, fmt.Errorf("loading payment method %q: %w", id, err)
	}
	return &m, nil
}
