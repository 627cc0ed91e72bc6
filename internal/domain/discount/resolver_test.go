package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	discount *Discount
	err      error
}

func (m *mockStore) FindByCode(_ context.Context, _ string) (*Discount, error) {
	return m.discount, m.err
}

func (m *mockStore) List(_ context.Context) ([]Discount, error) {
	if m.discount == nil {
		return nil, nil
	}
	return []Discount{*m.discount}, nil
}

func TestResolver_Resolve(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		store      *mockStore
		total      string
		wantAmount string
		wantErr    error
	}{
		{
			name: "percentage discount on total",
			store: &mockStore{discount: &Discount{
				Code: "SAVE10", Type: TypePercentage, Value: decimal.NewFromInt(10),
				StartDate: pastTime, EndDate: futureTime, Usability: 5,
			}},
			total:      "1100.00",
			wantAmount: "110.00",
		},
		{
			name: "fixed discount",
			store: &mockStore{discount: &Discount{
				Code: "FLAT50", Type: TypeFixed, Value: decimal.NewFromInt(50),
				StartDate: pastTime, EndDate: futureTime, Usability: 1,
			}},
			total:      "200.00",
			wantAmount: "50.00",
		},
		{
			name: "fixed discount clamped to total",
			store: &mockStore{discount: &Discount{
				Code: "FLAT500", Type: TypeFixed, Value: decimal.NewFromInt(500),
				StartDate: pastTime, EndDate: futureTime, Usability: 1,
			}},
			total:      "120.00",
			wantAmount: "120.00",
		},
		{
			name: "full percentage never exceeds total",
			store: &mockStore{discount: &Discount{
				Code: "ALL", Type: TypePercentage, Value: decimal.NewFromInt(100),
				StartDate: pastTime, EndDate: futureTime, Usability: 1,
			}},
			total:      "75.50",
			wantAmount: "75.50",
		},
		{
			name:    "unknown code",
			store:   &mockStore{err: ErrNotFound},
			total:   "100.00",
			wantErr: ErrNotFound,
		},
		{
			name: "not yet active",
			store: &mockStore{discount: &Discount{
				Code: "SOON", Type: TypePercentage, Value: decimal.NewFromInt(10),
				StartDate: futureTime, EndDate: futureTime.Add(24 * time.Hour), Usability: 5,
			}},
			total:   "100.00",
			wantErr: ErrNotYetActive,
		},
		{
			name: "expired",
			store: &mockStore{discount: &Discount{
				Code: "OLD", Type: TypePercentage, Value: decimal.NewFromInt(10),
				StartDate: pastTime.Add(-48 * time.Hour), EndDate: pastTime, Usability: 5,
			}},
			total:   "100.00",
			wantErr: ErrExpired,
		},
		{
			name: "exhausted",
			store: &mockStore{discount: &Discount{
				Code: "SPENT", Type: TypePercentage, Value: decimal.NewFromInt(10),
				StartDate: pastTime, EndDate: futureTime, Usability: 0,
			}},
			total:   "100.00",
			wantErr: ErrExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.store)
			r.now = func() time.Time { return fixedNow }

			got, err := r.Resolve(context.Background(), "CODE", decimal.RequireFromString(tt.total))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount),
				"expected amount %s, got %s", tt.wantAmount, got.Amount)
		})
	}
}

func TestResolver_StoreError(t *testing.T) {
	r := NewResolver(&mockStore{err: errors.New("connection lost")})

	_, err := r.Resolve(context.Background(), "ANY", decimal.NewFromInt(100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup discount")
}

func TestAmount_UnsupportedType(t *testing.T) {
	_, err := Amount(&Discount{Type: Type("bogus"), Value: decimal.NewFromInt(1)}, decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported discount type")
}
