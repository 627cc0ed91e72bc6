package address

import (
	"context"

	"github.com/go-faster/errors"
)

// Resolver turns checkout address input into a concrete address value.
type Resolver struct {
	book Book
}

// NewResolver creates a Resolver backed by the given address book.
func NewResolver(book Book) *Resolver {
	return &Resolver{book: book}
}

// Resolve returns the address value for the given input. When the input
// carries an ID it must match one of the user's saved addresses; otherwise a
// new address is validated, persisted for future reuse, and returned. The
// returned value is copied into the order verbatim; it is never a live
// reference to the saved row.
func (r *Resolver) Resolve(ctx context.Context, userID string, in Input) (Address, error) {
	if in.ID != "" {
		saved, err := r.book.FindSaved(ctx, userID, in.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Address{}, ErrNotFound
			}
			return Address{}, errors.Wrap(err, "find saved address")
		}
		return *saved, nil
	}

	if missing := missingField(in); missing != "" {
		return Address{}, errors.Wrapf(ErrInvalid, "missing %s", missing)
	}

	saved, err := r.book.Save(ctx, userID, Address{
		StreetAddress: in.StreetAddress,
		City:          in.City,
		State:         in.State,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		PhoneNumber:   in.PhoneNumber,
	})
	if err != nil {
		return Address{}, errors.Wrap(err, "save address")
	}
	return *saved, nil
}

func missingField(in Input) string {
	switch {
	case in.StreetAddress == "":
		return "streetAddress"
	case in.City == "":
		return "city"
	case in.State == "":
		return "state"
	case in.PostalCode == "":
		return "postalCode"
	case in.Country == "":
		return "country"
	case in.PhoneNumber == "":
		return "phoneNumber"
	}
	return ""
}
