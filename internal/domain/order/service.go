package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/delivery"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/payment"
)

// CheckoutRequest holds the input for converting a cart into an order.
type CheckoutRequest struct {
	UserID           string
	ShippingAddress  address.Input
	BillingAddress   address.Input
	DeliveryMethodID string
	DiscountCode     string
}

// Repository defines persistence operations for existing orders. Update is
// guarded by the expected prior state: implementations must apply it only
// while the stored status and payment status still equal from and
// fromPayment, and return ErrStale otherwise. Gateway callbacks retry, so
// two writers racing on the same order must never both win.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Update(ctx context.Context, o *Order, from Status, fromPayment PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

// CheckoutStore commits a checkout as one atomic unit: persist the order,
// consume one unit of discount usability when the order carries a code, and
// clear the user's cart. All three succeed or none do. The usability
// decrement must be conditional (only while usability > 0) and report
// discount.ErrExhausted when no unit remains; the cart clear must fail with
// cart.ErrNotFound when a concurrent checkout already consumed the cart.
type CheckoutStore interface {
	CommitCheckout(ctx context.Context, o *Order) error
}

// Service orchestrates checkout and owns order state transitions.
type Service struct {
	carts      cart.Store
	addresses  *address.Resolver
	discounts  *discount.Resolver
	deliveries delivery.Catalog
	payments   payment.Registry
	orders     Repository
	checkout   CheckoutStore
	policy     PricingPolicy
	now        func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	carts cart.Store,
	addresses *address.Resolver,
	discounts *discount.Resolver,
	deliveries delivery.Catalog,
	payments payment.Registry,
	orders Repository,
	checkout CheckoutStore,
) *Service {
	return &Service{
		carts:      carts,
		addresses:  addresses,
		discounts:  discounts,
		deliveries: deliveries,
		payments:   payments,
		orders:     orders,
		checkout:   checkout,
		policy:     DiscountAfterDelivery,
		now:        time.Now,
	}
}

// WithPricingPolicy overrides the discount application policy. The default
// applies the discount after the delivery price is added.
func (s *Service) WithPricingPolicy(p PricingPolicy) *Service {
	s.policy = p
	return s
}

// Checkout converts the user's cart into a persisted pending/unpaid order.
// Every failure before the commit leaves no partial state; the commit itself
// is a single transaction in the store.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	c, err := s.carts.GetCart(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrap(err, "load cart")
	}
	if len(c.Items) == 0 {
		return nil, cart.ErrEmpty
	}

	shipping, err := s.addresses.Resolve(ctx, req.UserID, req.ShippingAddress)
	if err != nil {
		return nil, errors.Wrap(err, "shipping address")
	}
	billing, err := s.addresses.Resolve(ctx, req.UserID, req.BillingAddress)
	if err != nil {
		return nil, errors.Wrap(err, "billing address")
	}

	method, err := s.deliveries.Get(ctx, req.DeliveryMethodID)
	if err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			return nil, delivery.ErrNotFound
		}
		return nil, errors.Wrap(err, "load delivery method")
	}

	subtotal, err := Subtotal(c.Items)
	if err != nil {
		return nil, err
	}

	// The pre-discount base depends on the pricing policy: either the bare
	// subtotal or subtotal plus delivery.
	running := subtotal
	if s.policy == DiscountAfterDelivery {
		running = running.Add(method.Price)
	}

	var applied *discount.Applied
	if req.DiscountCode != "" {
		applied, err = s.discounts.Resolve(ctx, req.DiscountCode, running)
		if err != nil {
			return nil, err
		}
	}

	discountAmount := decimal.Zero
	if applied != nil {
		discountAmount = applied.Amount
	}

	grandTotal, err := GrandTotal(subtotal, method.Price, discountAmount)
	if err != nil {
		return nil, err
	}

	o := New(req.UserID, c.Items, method.ID, applied, shipping, billing, grandTotal, s.now())

	if err := s.checkout.CommitCheckout(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// BindPayment is the payment-gateway callback boundary: after the external
// system confirms the charge, it binds the method to the order and advances
// pending → processing in one transition.
func (s *Service) BindPayment(ctx context.Context, orderID, methodID, methodCode string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}

	m, err := s.payments.Get(ctx, methodID)
	if err != nil {
		if errors.Is(err, payment.ErrMethodNotFound) {
			return nil, payment.ErrMethodNotFound
		}
		return nil, errors.Wrap(err, "load payment method")
	}
	if !m.Active || m.Code != methodCode {
		return nil, payment.ErrMethodNotFound
	}

	from, fromPayment := o.Status, o.PaymentStatus
	if err := o.BindPayment(m.ID, m.Code, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o, from, fromPayment); err != nil {
		switch {
		case errors.Is(err, ErrStale):
			// A concurrent callback got there first. The only transition
			// out of pending/unpaid is paying, so the order is paid.
			return nil, ErrAlreadyPaid
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, errors.Wrap(err, "update order")
		}
	}
	return o, nil
}

// AdvanceShipment transitions processing → shipped. Invoked by the
// fulfillment system.
func (s *Service) AdvanceShipment(ctx context.Context, orderID string) (*Order, error) {
	return s.advance(ctx, orderID, StatusShipped)
}

// AdvanceDelivery transitions shipped → delivered.
func (s *Service) AdvanceDelivery(ctx context.Context, orderID string) (*Order, error) {
	return s.advance(ctx, orderID, StatusDelivered)
}

func (s *Service) advance(ctx context.Context, orderID string, target Status) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}

	from, fromPayment := o.Status, o.PaymentStatus
	if err := o.AdvanceTo(target, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o, from, fromPayment); err != nil {
		switch {
		case errors.Is(err, ErrStale):
			return nil, ErrIllegalTransition
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, errors.Wrap(err, "update order")
		}
	}
	return o, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}
	return o, nil
}

// ListByUser returns all orders placed by the given user.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return list, nil
}

// Delete removes an order. Administrative only; there are no cascading
// deletes from address or discount edits.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete order")
	}
	return nil
}
