package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
)

const (
	findDiscountByCodeSQL = `SELECT code, description, discount_type, value, start_date, end_date, usability
		FROM discounts WHERE UPPER(code) = UPPER($1)`

	// The decrement is conditional on remaining usability so two concurrent
	// checkouts can never both consume the last unit.
	decrementUsabilitySQL = `UPDATE discounts SET usability = usability - 1
		WHERE UPPER(code) = UPPER($1) AND usability > 0`

	createDiscountSQL = `INSERT INTO discounts (code, description, discount_type, value, start_date, end_date, usability)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING`

	listDiscountsSQL = `SELECT code, description, discount_type, value, start_date, end_date, usability
		FROM discounts ORDER BY code`
)

var _ discount.Store = (*DiscountStore)(nil)

// DiscountStore implements discount.Store backed by PostgreSQL.
type DiscountStore struct {
	pool *pgxpool.Pool
}

// NewDiscountStore returns a DiscountStore that uses the given pool.
func NewDiscountStore(pool *pgxpool.Pool) *DiscountStore {
	return &DiscountStore{pool: pool}
}

// FindByCode looks up a discount by its code (case-insensitive).
// Returns discount.ErrNotFound when no matching discount exists.
func (s *DiscountStore) FindByCode(ctx context.Context, code string) (*discount.Discount, error) {
	rows, err := s.pool.Query(ctx, findDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &d, nil
}

// Create inserts a new discount after validating it. Existing codes are
// left untouched. Used by seeding and bulk ingestion.
func (s *DiscountStore) Create(ctx context.Context, d *discount.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, createDiscountSQL,
		d.Code, d.Description, string(d.Type), d.Value, d.StartDate, d.EndDate, d.Usability,
	)
	if err != nil {
		return fmt.Errorf("creating discount %q: %w", d.Code, err)
	}
	return nil
}

// List returns all discounts ordered by code.
func (s *DiscountStore) List(ctx context.Context) ([]discount.Discount, error) {
	rows, err := s.pool.Query(ctx, listDiscountsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscount)
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var (
		d            discount.Discount
		discountType string
		value        decimal.Decimal
		startDate    time.Time
		endDate      time.Time
		usability    int32
	)
	err := row.Scan(&d.Code, &d.Description, &discountType, &value, &startDate, &endDate, &usability)
	d.Type = discount.Type(discountType)
	d.Value = value
	d.StartDate = startDate
	d.EndDate = endDate
	d.Usability = int(usability)
	return d, err
}
