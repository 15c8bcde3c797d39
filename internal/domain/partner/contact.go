package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/erp/shipsync/internal/domain/shared"
)

// ContactEmail is one email on a contact's list. The first primary entry
// is the contact's identity for dedup purposes.
type ContactEmail struct {
	Email     string
	IsPrimary bool
}

// Contact is a person attached to a customer. Contacts are deduplicated
// per customer by normalized primary email; a contact without an email is
// deduplicated by full name.
type Contact struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID
	Salutation string
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string
	Phone      string
	Emails     []ContactEmail
}

// NewContact creates a contact linked to a customer. First name is the
// only required name part.
func NewContact(customerID uuid.UUID, firstName string) (*Contact, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT_NAME", "Contact first name cannot be empty")
	}
	return &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		FirstName:         strings.TrimSpace(firstName),
	}, nil
}

// AddEmail appends an email if it is not already present. The first email
// added becomes the primary one.
func (c *Contact) AddEmail(email string) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return
	}
	for _, e := range c.Emails {
		if strings.EqualFold(e.Email, normalized) {
			return
		}
	}
	c.Emails = append(c.Emails, ContactEmail{
		Email:     normalized,
		IsPrimary: len(c.Emails) == 0,
	})
	c.IncrementVersion()
}

// PrimaryEmail returns the primary email, or the empty string
func (c *Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.IsPrimary {
			return e.Email
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0].Email
	}
	return ""
}

// FullName joins the non-empty name parts with single spaces
func (c *Contact) FullName() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Salutation, c.FirstName, c.MiddleName, c.LastName, c.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
