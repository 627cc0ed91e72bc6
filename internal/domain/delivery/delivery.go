// Package delivery exposes the delivery method catalog consumed during
// checkout. Delivery methods are read-only reference data here.
package delivery

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a delivery method id is unknown.
var ErrNotFound = errors.New("delivery method not found")

// Method describes one way of shipping an order.
type Method struct {
	ID                    string
	Name                  string
	Description           string
	Carrier               string
	EstimatedDeliveryTime string
	Price                 decimal.Decimal
}

// Catalog provides delivery method lookups.
type Catalog interface {
	Get(ctx context.Context, id string) (*Method, error)
	List(ctx context.Context) ([]Method, error)
}
