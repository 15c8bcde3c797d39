package partner

import (
	"context"

	"github.com/erp/shipsync/internal/domain/shared"
)

// CustomerRepository provides customer persistence. Save returns
// shared.ErrAlreadyExists when the carrier customer ID collides with an
// existing record.
type CustomerRepository interface {
	shared.Repository[Customer]
	// FindByCarrierCustomerID matches on the carrier-side identity
	FindByCarrierCustomerID(ctx context.Context, carrierCustomerID string) (*Customer, error)
	// FindByName matches on the display name
	FindByName(ctx context.Context, name string) (*Customer, error)
	// FindByContactEmail matches a customer through any contact carrying
	// the given (normalized) email
	FindByContactEmail(ctx context.Context, email string) (*Customer, error)
}

// ContactRepository provides contact persistence
type ContactRepository interface {
	shared.Repository[Contact]
	// FindByEmail matches a contact by normalized email, across all
	// customers; emails identify people globally
	FindByEmail(ctx context.Context, email string) (*Contact, error)
}

// AddressRepository provides address persistence
type AddressRepository interface {
	shared.Repository[Address]
	// FindByLocation matches an address by normalized first line and
	// city. When strict is true the postal code must also match.
	FindByLocation(ctx context.Context, line1, city, postalCode string, strict bool) (*Address, error)
}
