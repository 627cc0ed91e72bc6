// Package payment models the payment method registry. The core never talks
// to a gateway: an external system confirms the charge and invokes the
// payment callback, which binds one of these methods to an order.
package payment

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrMethodNotFound is returned when a payment method is unregistered,
// inactive, or its code does not match the registered method.
var ErrMethodNotFound = errors.New("payment method not found")

// Method is a registered payment method (e.g. a Stripe or PayPal handler).
type Method struct {
	ID             string
	Name           string
	Code           string
	Description    string
	PaymentHandler string
	Active         bool
}

// Registry provides payment method lookups.
type Registry interface {
	Get(ctx context.Context, id string) (*Method, error)
}
