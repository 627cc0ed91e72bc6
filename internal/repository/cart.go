package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
)

const getCartSQL = `SELECT user_id, items FROM carts WHERE user_id = $1`

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by PostgreSQL. Cart items live in a
// JSONB snapshot column; the checkout transaction deletes the row.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// GetCart loads the user's open cart.
// Returns cart.ErrNotFound when the user has no cart row.
func (s *CartStore) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	var (
		c         cart.Cart
		itemsJSON []byte
	)
	err := s.pool.QueryRow(ctx, getCartSQL, userID).Scan(&c.UserID, &itemsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("loading cart for user %q: %w", userID, err)
	}

	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, fmt.Errorf("decoding cart items for user %q: %w", userID, err)
	}
	return &c, nil
}
