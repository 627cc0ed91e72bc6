package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, delivery_method_id, discount_code, discount_amount,
		shipping_address, billing_address, grand_total, status,
		payment_method_id, payment_method_code, payment_status, created_at, updated_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	// The state guard makes the transition a single conditional write: a
	// concurrent writer that already moved the order away from the expected
	// state turns this into a zero-row update instead of a silent overwrite.
	updateOrderSQL = `UPDATE orders SET status = $2, payment_method_id = $3,
		payment_method_code = $4, payment_status = $5, updated_at = $6
		WHERE id = $1 AND status = $7 AND payment_status = $8`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// and both addresses are stored as JSONB value snapshots.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Get loads a single order by id.
// Returns order.ErrNotFound when the id is unknown.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("loading order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Update persists the mutable part of an order: its status and payment
// sub-state. Items, addresses, and totals are immutable after creation and
// deliberately excluded from the statement. The write only applies while the
// row still holds the expected prior state; a zero-row result means either
// the order is gone (order.ErrNotFound) or a concurrent transition won the
// race (order.ErrStale).
func (r *OrderRepository) Update(ctx context.Context, o *order.Order, from order.Status, fromPayment order.PaymentStatus) error {
	var methodID, methodCode *string
	if o.Payment != nil {
		methodID = &o.Payment.MethodID
		methodCode = &o.Payment.MethodCode
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, string(o.Status), methodID, methodCode, string(o.PaymentStatus), o.UpdatedAt,
		string(from), string(fromPayment),
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, orderExistsSQL, o.ID).Scan(&exists); err != nil {
			return fmt.Errorf("updating order %q: %w", o.ID, err)
		}
		if !exists {
			return order.ErrNotFound
		}
		return order.ErrStale
	}
	return nil
}

// Delete removes an order.
// Returns order.ErrNotFound when the id is unknown.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// insertOrderArgs serializes an order into the argument list of
// insertOrderSQL. Shared with the checkout transaction.
func insertOrderArgs(o *order.Order) ([]any, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshaling shipping address: %w", err)
	}
	billingJSON, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshaling billing address: %w", err)
	}

	var (
		discountCode   *string
		discountAmount *decimal.Decimal
	)
	if o.Discount != nil {
		discountCode = &o.Discount.Code
		discountAmount = &o.Discount.Amount
	}

	var methodID, methodCode *string
	if o.Payment != nil {
		methodID = &o.Payment.MethodID
		methodCode = &o.Payment.MethodCode
	}

	return []any{
		o.ID, o.UserID, itemsJSON, o.DeliveryMethodID, discountCode, discountAmount,
		shippingJSON, billingJSON, o.GrandTotal, string(o.Status),
		methodID, methodCode, string(o.PaymentStatus), o.CreatedAt, o.UpdatedAt,
	}, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o              order.Order
		itemsJSON      []byte
		shippingJSON   []byte
		billingJSON    []byte
		discountCode   *string
		discountAmount *decimal.Decimal
		methodID       *string
		methodCode     *string
		status         string
		paymentStatus  string
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.DeliveryMethodID, &discountCode, &discountAmount,
		&shippingJSON, &billingJSON, &o.GrandTotal, &status,
		&methodID, &methodCode, &paymentStatus, &createdAt, &updatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decoding order items: %w", err)
	}
	var shipping, billing address.Address
	if err := json.Unmarshal(shippingJSON, &shipping); err != nil {
		return order.Order{}, fmt.Errorf("decoding shipping address: %w", err)
	}
	if err := json.Unmarshal(billingJSON, &billing); err != nil {
		return order.Order{}, fmt.Errorf("decoding billing address: %w", err)
	}
	o.ShippingAddress = shipping
	o.BillingAddress = billing

	if discountCode != nil && discountAmount != nil {
		o.Discount = &discount.Applied{Code: *discountCode, Amount: *discountAmount}
	}
	if methodID != nil && methodCode != nil {
		o.Payment = &order.PaymentBinding{MethodID: *methodID, MethodCode: *methodCode}
	}
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	o.CreatedAt = createdAt
	o.UpdatedAt = updatedAt
	return o, nil
}
