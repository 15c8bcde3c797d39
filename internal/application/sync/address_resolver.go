package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/shared"
)

// AddressResolver finds or creates the address record for a carrier
// order party. Addresses are deduplicated by first line and city so one
// record can serve many customers.
type AddressResolver struct {
	addresses partner.AddressRepository
	logger    *zap.Logger
}

// NewAddressResolver creates an address resolver
func NewAddressResolver(addresses partner.AddressRepository, logger *zap.Logger) *AddressResolver {
	return &AddressResolver{addresses: addresses, logger: logger}
}

// Resolve returns the address for a carrier party linked to the given
// customer, or nil when the party carries no usable street address.
// strict includes the postal code in the dedup match.
func (r *AddressResolver) Resolve(ctx context.Context, customer *partner.Customer, party *carrier.Party, addrType partner.AddressType, email string, strict bool) (*partner.Address, error) {
	if party == nil || !party.HasAddress() {
		return nil, nil
	}

	line1 := strings.TrimSpace(party.Street1)
	city := strings.TrimSpace(party.City)
	if city == "" {
		city = fallbackFirstName
	}

	existing, err := r.addresses.FindByLocation(ctx, line1, city, party.PostalCode, strict)
	if err == nil {
		r.refresh(existing, party, addrType, email)
		existing.LinkCustomer(customer.GetID())
		if saveErr := r.addresses.Save(ctx, existing); saveErr != nil {
			return nil, fmt.Errorf("update address: %w", saveErr)
		}
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find address: %w", err)
	}

	title := strings.TrimSpace(party.Name)
	if title == "" {
		title = customer.Name
	}
	address, err := partner.NewAddress(addrType, title, line1, city)
	if err != nil {
		return nil, err
	}
	r.refresh(address, party, addrType, email)
	address.LinkCustomer(customer.GetID())

	if err := r.addresses.Save(ctx, address); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}

	r.logger.Debug("address created",
		zap.String("address_id", address.GetID().String()),
		zap.String("type", string(addrType)),
		zap.String("city", city))
	return address, nil
}

// refresh overwrites the mutable fields and the address type from the
// latest carrier payload. An unmapped country code leaves the country
// empty.
func (r *AddressResolver) refresh(address *partner.Address, party *carrier.Party, addrType partner.AddressType, email string) {
	address.Type = addrType
	address.Line2 = strings.TrimSpace(party.Street2)
	address.Line3 = strings.TrimSpace(party.Street3)
	address.State = party.State
	address.PostalCode = party.PostalCode
	address.Country = carrier.CountryName(party.Country)
	if party.Phone != "" {
		address.Phone = party.Phone
	}
	if email != "" {
		address.Email = carrier.NormalizeEmail(email)
	}
}
