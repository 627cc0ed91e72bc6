// Package address resolves shipping and billing addresses for checkout,
// either from the user's saved address book or by materializing a new one.
package address

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a referenced saved address does not exist
	// for the user.
	ErrNotFound = errors.New("address not found")
	// ErrInvalid is returned when a new address is missing required fields.
	ErrInvalid = errors.New("invalid address")
)

// Address is a postal address. Orders embed value copies of it, so an
// order's addresses stay intact even if the saved address is later edited
// or deleted.
type Address struct {
	ID            string `json:"id,omitempty"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	PhoneNumber   string `json:"phoneNumber"`
	IsDefault     bool   `json:"isDefault,omitempty"`
}

// Input references an existing saved address by ID, or carries the full
// field set for a new one.
type Input struct {
	ID            string `json:"id"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	PhoneNumber   string `json:"phoneNumber"`
}

// Book provides access to a user's saved addresses.
type Book interface {
	FindSaved(ctx context.Context, userID, addressID string) (*Address, error)
	Save(ctx context.Context, userID string, addr Address) (*Address, error)
}
