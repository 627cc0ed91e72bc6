package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestOrder() *Order {
	items := []cart.Item{{
		ProductID: "P1", VariantID: "V1", Quantity: 2,
		UnitPrice: decimal.RequireFromString("500"),
		LineTotal: decimal.RequireFromString("1000"),
	}}
	return New("u1", items, "dm-1", nil, address.Address{City: "Springfield"},
		address.Address{City: "Springfield"}, decimal.RequireFromString("1100"), testNow)
}

func TestNew_InitialState(t *testing.T) {
	o := newTestOrder()

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentUnpaid, o.PaymentStatus)
	assert.Nil(t, o.Payment)
	assert.Equal(t, testNow, o.CreatedAt)
}

func TestBindPayment_JointTransition(t *testing.T) {
	o := newTestOrder()
	later := testNow.Add(time.Minute)

	require.NoError(t, o.BindPayment("pm-1", "stripe", later))

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	require.NotNil(t, o.Payment)
	assert.Equal(t, "pm-1", o.Payment.MethodID)
	assert.Equal(t, "stripe", o.Payment.MethodCode)
	assert.Equal(t, later, o.UpdatedAt)
}

func TestBindPayment_AlreadyPaid(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.BindPayment("pm-1", "stripe", testNow))

	err := o.BindPayment("pm-1", "stripe", testNow)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, StatusProcessing, o.Status, "status must not regress")
}

func TestAdvanceTo_ForwardOnly(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		target  Status
		wantErr error
	}{
		{name: "processing to shipped", from: StatusProcessing, target: StatusShipped},
		{name: "shipped to delivered", from: StatusShipped, target: StatusDelivered},
		{name: "pending cannot ship", from: StatusPending, target: StatusShipped, wantErr: ErrIllegalTransition},
		{name: "pending cannot deliver", from: StatusPending, target: StatusDelivered, wantErr: ErrIllegalTransition},
		{name: "processing cannot skip to delivered", from: StatusProcessing, target: StatusDelivered, wantErr: ErrIllegalTransition},
		{name: "delivered is terminal", from: StatusDelivered, target: StatusShipped, wantErr: ErrIllegalTransition},
		{name: "no backward move", from: StatusShipped, target: StatusProcessing, wantErr: ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder()
			o.Status = tt.from

			err := o.AdvanceTo(tt.target, testNow)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, o.Status)
		})
	}
}

func TestAdvanceTo_FullLifecycle(t *testing.T) {
	o := newTestOrder()

	require.NoError(t, o.BindPayment("pm-1", "stripe", testNow))
	require.NoError(t, o.AdvanceTo(StatusShipped, testNow))
	require.NoError(t, o.AdvanceTo(StatusDelivered, testNow))

	assert.Equal(t, StatusDelivered, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
}
