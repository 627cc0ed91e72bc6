package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscount_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	valid := func() Discount {
		return Discount{
			Code:      "SAVE10",
			Type:      TypePercentage,
			Value:     decimal.NewFromInt(10),
			StartDate: now,
			EndDate:   now.AddDate(0, 1, 0),
			Usability: 100,
		}
	}

	t.Run("valid", func(t *testing.T) {
		d := valid()
		require.NoError(t, d.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Discount)
	}{
		{"missing code", func(d *Discount) { d.Code = "" }},
		{"unsupported type", func(d *Discount) { d.Type = "bogo" }},
		{"negative value", func(d *Discount) { d.Value = decimal.NewFromInt(-1) }},
		{"end before start", func(d *Discount) { d.EndDate = d.StartDate.Add(-time.Hour) }},
		{"negative usability", func(d *Discount) { d.Usability = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)

			err := d.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
