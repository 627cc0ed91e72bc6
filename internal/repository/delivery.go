package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/delivery"
)

const (
	getDeliveryMethodSQL = `SELECT id, name, description, carrier, estimated_delivery_time, price
		FROM delivery_methods WHERE id = $1`

	listDeliveryMethodsSQL = `SELECT id, name, description, carrier, estimated_delivery_time, price
		FROM delivery_methods ORDER BY name`
)

var _ delivery.Catalog = (*DeliveryCatalog)(nil)

// DeliveryCatalog implements delivery.Catalog backed by PostgreSQL.
type DeliveryCatalog struct {
	pool *pgxpool.Pool
}

// NewDeliveryCatalog returns a DeliveryCatalog that uses the given pool.
func NewDeliveryCatalog(pool *pgxpool.Pool) *DeliveryCatalog {
	return &DeliveryCatalog{pool: pool}
}

// Get looks up a delivery method by id.
// Returns delivery.ErrNotFound when the id is unknown.
func (c *DeliveryCatalog) Get(ctx context.Context, id string) (*delivery.Method, error) {
	rows, err := c.pool.Query(ctx, getDeliveryMethodSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading delivery method %q: %w", id, err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanDeliveryMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, delivery.ErrNotFound
		}
		return nil, fmt.Errorf("loading delivery method %q: %w", id, err)
	}
	return &m, nil
}

// List returns all delivery methods ordered by name.
func (c *DeliveryCatalog) List(ctx context.Context) ([]delivery.Method, error) {
	rows, err := c.pool.Query(ctx, listDeliveryMethodsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing delivery methods: %w", err)
	}
	return pgx.CollectRows(rows, scanDeliveryMethod)
}

func scanDeliveryMethod(row pgx.CollectableRow) (delivery.Method, error) {
	var m delivery.Method
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Carrier, &m.EstimatedDeliveryTime, &m.Price)
	return m, err
}
