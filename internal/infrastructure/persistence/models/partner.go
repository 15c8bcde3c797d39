package models

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/erp/shipsync/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	// CarrierCustomerID is empty for guest-order customers, so the unique
	// constraint lives in a partial index created by the migration
	CarrierCustomerID string               `gorm:"type:varchar(50);index"`
	Name              string               `gorm:"type:varchar(200);not null;index"`
	Type              partner.CustomerType `gorm:"type:varchar(20);not null;default:'Individual'"`
	CustomerGroup     string               `gorm:"type:varchar(100)"`
	Territory         string               `gorm:"type:varchar(100)"`
	PrimaryContactID  *uuid.UUID           `gorm:"type:uuid"`
	PrimaryAddressID  *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	customer := &partner.Customer{
		CarrierCustomerID: m.CarrierCustomerID,
		Name:              m.Name,
		Type:              m.Type,
		Group:             m.CustomerGroup,
		Territory:         m.Territory,
		PrimaryContactID:  m.PrimaryContactID,
		PrimaryAddressID:  m.PrimaryAddressID,
	}
	m.PopulateAggregateRoot(&customer.BaseAggregateRoot)
	return customer
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CarrierCustomerID = c.CarrierCustomerID
	m.Name = c.Name
	m.Type = c.Type
	m.CustomerGroup = c.Group
	m.Territory = c.Territory
	m.PrimaryContactID = c.PrimaryContactID
	m.PrimaryAddressID = c.PrimaryAddressID
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// contactEmailJSON is the jsonb shape of one contact email
type contactEmailJSON struct {
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
}

// ContactModel is the persistence model for the Contact domain entity.
// Emails are stored as a jsonb array so a containment query can match a
// contact by any of its addresses.
type ContactModel struct {
	AggregateModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Salutation string    `gorm:"type:varchar(20)"`
	FirstName  string    `gorm:"type:varchar(100);not null"`
	MiddleName string    `gorm:"type:varchar(100)"`
	LastName   string    `gorm:"type:varchar(100)"`
	Suffix     string    `gorm:"type:varchar(20)"`
	Phone      string    `gorm:"type:varchar(50)"`
	Emails     string    `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
func (m *ContactModel) ToDomain() *partner.Contact {
	contact := &partner.Contact{
		CustomerID: m.CustomerID,
		Salutation: m.Salutation,
		FirstName:  m.FirstName,
		MiddleName: m.MiddleName,
		LastName:   m.LastName,
		Suffix:     m.Suffix,
		Phone:      m.Phone,
	}
	m.PopulateAggregateRoot(&contact.BaseAggregateRoot)

	var emails []contactEmailJSON
	if m.Emails != "" {
		_ = json.Unmarshal([]byte(m.Emails), &emails)
	}
	for _, e := range emails {
		contact.Emails = append(contact.Emails, partner.ContactEmail{
			Email:     e.Email,
			IsPrimary: e.IsPrimary,
		})
	}
	return contact
}

// FromDomain populates the persistence model from a domain Contact entity.
func (m *ContactModel) FromDomain(c *partner.Contact) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.CustomerID
	m.Salutation = c.Salutation
	m.FirstName = c.FirstName
	m.MiddleName = c.MiddleName
	m.LastName = c.LastName
	m.Suffix = c.Suffix
	m.Phone = c.Phone

	emails := make([]contactEmailJSON, 0, len(c.Emails))
	for _, e := range c.Emails {
		emails = append(emails, contactEmailJSON{Email: e.Email, IsPrimary: e.IsPrimary})
	}
	raw, _ := json.Marshal(emails)
	m.Emails = string(raw)
}

// ContactModelFromDomain creates a new persistence model from a domain Contact entity.
func ContactModelFromDomain(c *partner.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}

// addressLinkJSON is the jsonb shape of one customer link
type addressLinkJSON struct {
	CustomerID uuid.UUID `json:"customer_id"`
}

// AddressModel is the persistence model for the Address domain entity.
// One address row may be linked to many customers.
type AddressModel struct {
	AggregateModel
	Type       partner.AddressType `gorm:"type:varchar(20);not null"`
	Title      string              `gorm:"type:varchar(200)"`
	Line1      string              `gorm:"type:varchar(200);not null;index"`
	Line2      string              `gorm:"type:varchar(200)"`
	Line3      string              `gorm:"type:varchar(200)"`
	City       string              `gorm:"type:varchar(100);not null;index"`
	State      string              `gorm:"type:varchar(100)"`
	PostalCode string              `gorm:"type:varchar(20)"`
	Country    string              `gorm:"type:varchar(100)"`
	Phone      string              `gorm:"type:varchar(50)"`
	Email      string              `gorm:"type:varchar(200)"`
	Links      string              `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address entity.
func (m *AddressModel) ToDomain() *partner.Address {
	address := &partner.Address{
		Type:       m.Type,
		Title:      m.Title,
		Line1:      m.Line1,
		Line2:      m.Line2,
		Line3:      m.Line3,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
		Phone:      m.Phone,
		Email:      m.Email,
	}
	m.PopulateAggregateRoot(&address.BaseAggregateRoot)

	var links []addressLinkJSON
	if m.Links != "" {
		_ = json.Unmarshal([]byte(m.Links), &links)
	}
	for _, l := range links {
		address.Links = append(address.Links, partner.AddressLink{CustomerID: l.CustomerID})
	}
	return address
}

// FromDomain populates the persistence model from a domain Address entity.
func (m *AddressModel) FromDomain(a *partner.Address) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Type = a.Type
	m.Title = a.Title
	m.Line1 = a.Line1
	m.Line2 = a.Line2
	m.Line3 = a.Line3
	m.City = a.City
	m.State = a.State
	m.PostalCode = a.PostalCode
	m.Country = a.Country
	m.Phone = a.Phone
	m.Email = a.Email

	links := make([]addressLinkJSON, 0, len(a.Links))
	for _, l := range a.Links {
		links = append(links, addressLinkJSON{CustomerID: l.CustomerID})
	}
	raw, _ := json.Marshal(links)
	m.Links = string(raw)
}

// AddressModelFromDomain creates a new persistence model from a domain Address entity.
func AddressModelFromDomain(a *partner.Address) *AddressModel {
	m := &AddressModel{}
	m.FromDomain(a)
	return m
}
