package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/erp/shipsync/internal/domain/shared"
)

// CustomerType distinguishes individual buyers from companies
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "Individual"
	CustomerTypeCompany    CustomerType = "Company"
)

// IsValid returns true if the customer type is recognized
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeIndividual || t == CustomerTypeCompany
}

// Customer is a buyer materialized from carrier order data. The carrier
// customer ID is the primary identity; orders from guest checkouts carry
// none and are matched by email instead.
type Customer struct {
	shared.BaseAggregateRoot
	// CarrierCustomerID is empty for customers created from guest orders
	CarrierCustomerID string
	Name              string
	Type              CustomerType
	Group             string
	Territory         string
	// PrimaryContactID and PrimaryAddressID are set after the first
	// contact and address have been resolved for this customer
	PrimaryContactID *uuid.UUID
	PrimaryAddressID *uuid.UUID
}

// NewCustomer creates a customer with validation
func NewCustomer(carrierCustomerID, name string, customerType CustomerType, group, territory string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Customer type must be Individual or Company")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CarrierCustomerID: strings.TrimSpace(carrierCustomerID),
		Name:              strings.TrimSpace(name),
		Type:              customerType,
		Group:             group,
		Territory:         territory,
	}, nil
}

// SetPrimaryContact records the customer's primary contact
func (c *Customer) SetPrimaryContact(contactID uuid.UUID) {
	c.PrimaryContactID = &contactID
	c.IncrementVersion()
}

// SetPrimaryAddress records the customer's primary address
func (c *Customer) SetPrimaryAddress(addressID uuid.UUID) {
	c.PrimaryAddressID = &addressID
	c.IncrementVersion()
}

// Rename updates the customer display name with validation
func (c *Customer) Rename(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.IncrementVersion()
	return nil
}

func validateCustomerName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(trimmed) > 200 {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
