// Package order owns the order lifecycle: creation at checkout, the
// pending → processing → shipped → delivered progression, and the one-way
// unpaid → paid payment sub-state.
package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
)

// Status is the fulfillment state of an order. Transitions are strictly
// linear and forward-only.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// PaymentStatus is the payment sub-state of an order.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

var (
	// ErrNotFound is returned when an order id does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrIllegalTransition is returned when the current status does not
	// immediately precede the requested one.
	ErrIllegalTransition = errors.New("illegal order status transition")
	// ErrAlreadyPaid is returned when payment binding is attempted on an
	// order that is already paid.
	ErrAlreadyPaid = errors.New("order already paid")
	// ErrStale is returned by Repository.Update when the stored state no
	// longer matches the expected prior state, meaning a concurrent
	// transition won the race.
	ErrStale = errors.New("order state changed concurrently")
)

// PaymentBinding records the payment method bound to an order once the
// gateway confirms the charge.
type PaymentBinding struct {
	MethodID   string `json:"id"`
	MethodCode string `json:"code"`
}

// Order is an immutable priced snapshot of a checked-out cart. Items,
// addresses, and discount are fixed at creation; only Status and the payment
// sub-state move, monotonically forward.
type Order struct {
	ID               string
	UserID           string
	Items            []cart.Item
	DeliveryMethodID string
	Discount         *discount.Applied
	ShippingAddress  address.Address
	BillingAddress   address.Address
	GrandTotal       decimal.Decimal
	Status           Status
	Payment          *PaymentBinding
	PaymentStatus    PaymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New builds a fresh order in pending/unpaid state.
func New(userID string, items []cart.Item, deliveryMethodID string,
	applied *discount.Applied, shipping, billing address.Address,
	grandTotal decimal.Decimal, now time.Time,
) *Order {
	return &Order{
		ID:               uuid.New().String(),
		UserID:           userID,
		Items:            items,
		DeliveryMethodID: deliveryMethodID,
		Discount:         applied,
		ShippingAddress:  shipping,
		BillingAddress:   billing,
		GrandTotal:       grandTotal,
		Status:           StatusPending,
		PaymentStatus:    PaymentUnpaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// next returns the status that immediately follows s in the pipeline.
func (s Status) next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusShipped, true
	case StatusShipped:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// BindPayment marks the order paid with the given method and advances
// pending → processing. The two changes are one joint transition: a paid
// order is always at least processing, and processing is only ever entered
// by paying.
func (o *Order) BindPayment(methodID, methodCode string, now time.Time) error {
	if o.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	if o.Status != StatusPending {
		return ErrIllegalTransition
	}

	o.Payment = &PaymentBinding{MethodID: methodID, MethodCode: methodCode}
	o.PaymentStatus = PaymentPaid
	o.Status = StatusProcessing
	o.UpdatedAt = now
	return nil
}

// AdvanceTo moves the order to target, which must immediately follow the
// current status. Backward moves and skips fail with ErrIllegalTransition.
func (o *Order) AdvanceTo(target Status, now time.Time) error {
	next, ok := o.Status.next()
	if !ok || next != target {
		return ErrIllegalTransition
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}
