package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/erp/shipsync/internal/domain/shared"
)

// AddressType distinguishes billing from shipping addresses
type AddressType string

const (
	AddressTypeBilling  AddressType = "Billing"
	AddressTypeShipping AddressType = "Shipping"
)

// IsValid returns true if the address type is recognized
func (t AddressType) IsValid() bool {
	return t == AddressTypeBilling || t == AddressTypeShipping
}

// AddressLink ties an address to a customer. One address record may serve
// many customers; marketplace buyers reuse fulfillment center addresses.
type AddressLink struct {
	CustomerID uuid.UUID
}

// Address is a postal address. Identity for reuse is the normalized
// first line plus city; strict matching additionally compares the
// postal code.
type Address struct {
	shared.BaseAggregateRoot
	Type AddressType
	// Title is a human-facing label, typically the addressee name
	Title      string
	Line1      string
	Line2      string
	Line3      string
	City       string
	State      string
	PostalCode string
	// Country holds the resolved country name, not the ISO code
	Country string
	Phone   string
	Email   string
	Links   []AddressLink
}

// NewAddress creates an address with validation. Line1 and city are
// required; everything else is carrier-optional.
func NewAddress(addrType AddressType, title, line1, city string) (*Address, error) {
	if !addrType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADDRESS_TYPE", "Address type must be Billing or Shipping")
	}
	if strings.TrimSpace(line1) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address line 1 cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address city cannot be empty")
	}
	return &Address{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              addrType,
		Title:             strings.TrimSpace(title),
		Line1:             strings.TrimSpace(line1),
		City:              strings.TrimSpace(city),
	}, nil
}

// LinkCustomer attaches a customer link if it is not already present
func (a *Address) LinkCustomer(customerID uuid.UUID) {
	for _, link := range a.Links {
		if link.CustomerID == customerID {
			return
		}
	}
	a.Links = append(a.Links, AddressLink{CustomerID: customerID})
	a.IncrementVersion()
}

// IsLinkedTo reports whether the address already serves the customer
func (a *Address) IsLinkedTo(customerID uuid.UUID) bool {
	for _, link := range a.Links {
		if link.CustomerID == customerID {
			return true
		}
	}
	return false
}
