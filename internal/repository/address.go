package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
)

const (
	findSavedAddressSQL = `SELECT id, street_address, city, state, postal_code, country, phone_number, is_default
		FROM addresses WHERE user_id = $1 AND id = $2`

	saveAddressSQL = `INSERT INTO addresses (id, user_id, street_address, city, state, postal_code, country, phone_number, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

var _ address.Book = (*AddressBook)(nil)

// AddressBook implements address.Book backed by PostgreSQL.
type AddressBook struct {
	pool *pgxpool.Pool
}

// NewAddressBook returns an AddressBook that uses the given pool.
func NewAddressBook(pool *pgxpool.Pool) *AddressBook {
	return &AddressBook{pool: pool}
}

// FindSaved looks up one of the user's saved addresses.
// Returns address.ErrNotFound when the id is not in the user's book.
func (b *AddressBook) FindSaved(ctx context.Context, userID, addressID string) (*address.Address, error) {
	rows, err := b.pool.Query(ctx, findSavedAddressSQL, userID, addressID)
	if err != nil {
		return nil, fmt.Errorf("finding address %q: %w", addressID, err)
	}

	addr, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("finding address %q: %w", addressID, err)
	}
	return &addr, nil
}

// Save persists a new address owned by the user and returns it with its
// generated id.
func (b *AddressBook) Save(ctx context.Context, userID string, addr address.Address) (*address.Address, error) {
	addr.ID = uuid.New().String()
	_, err := b.pool.Exec(ctx, saveAddressSQL,
		addr.ID, userID, addr.StreetAddress, addr.City, addr.State,
		addr.PostalCode, addr.Country, addr.PhoneNumber, addr.IsDefault,
	)
	if err != nil {
		return nil, fmt.Errorf("saving address for user %q: %w", userID, err)
	}
	return &addr, nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.StreetAddress, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.PhoneNumber, &a.IsDefault,
	)
	return a, err
}
