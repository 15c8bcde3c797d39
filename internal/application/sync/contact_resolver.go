package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/shared"
)

// fallbackFirstName fills contacts whose carrier payload had no usable
// name at all
const fallbackFirstName = "Not Provided"

// ContactResolver finds or creates the contact for a carrier order's
// buyer. Emails identify people globally, so an existing contact with the
// same email is always reused regardless of customer.
type ContactResolver struct {
	contacts partner.ContactRepository
	logger   *zap.Logger
}

// NewContactResolver creates a contact resolver
func NewContactResolver(contacts partner.ContactRepository, logger *zap.Logger) *ContactResolver {
	return &ContactResolver{contacts: contacts, logger: logger}
}

// Resolve returns the contact for the given buyer name and email,
// creating one under the customer when no match exists
func (r *ContactResolver) Resolve(ctx context.Context, customer *partner.Customer, nameText, email, phone string) (*partner.Contact, error) {
	normalized := carrier.NormalizeEmail(email)

	if normalized != "" {
		existing, err := r.contacts.FindByEmail(ctx, normalized)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find contact by email: %w", err)
		}
	}

	parsed := ParseName(nameText)
	if parsed.First == "" {
		parsed.First = fallbackFirstName
	}

	contact, err := partner.NewContact(customer.GetID(), parsed.First)
	if err != nil {
		return nil, err
	}
	contact.Salutation = parsed.Salutation
	contact.MiddleName = parsed.Middle
	contact.LastName = parsed.Last
	contact.Suffix = parsed.Suffix
	contact.Phone = phone
	contact.AddEmail(normalized)

	if err := r.contacts.Save(ctx, contact); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) && normalized != "" {
			// lost a race; the winning record serves
			if existing, findErr := r.contacts.FindByEmail(ctx, normalized); findErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("save contact: %w", err)
	}

	r.logger.Debug("contact created",
		zap.String("contact_id", contact.GetID().String()),
		zap.String("email", normalized))
	return contact, nil
}
