package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/shared"
)

// CustomerResolver finds or creates the customer behind a carrier order.
// Identity precedence: carrier customer ID, then the email (matched as a
// display name or through a linked contact), then a fresh record built
// from the order's parties.
type CustomerResolver struct {
	customers partner.CustomerRepository
	contacts  *ContactResolver
	addresses *AddressResolver
	logger    *zap.Logger
}

// NewCustomerResolver creates a customer resolver
func NewCustomerResolver(
	customers partner.CustomerRepository,
	contacts *ContactResolver,
	addresses *AddressResolver,
	logger *zap.Logger,
) *CustomerResolver {
	return &CustomerResolver{
		customers: customers,
		contacts:  contacts,
		addresses: addresses,
		logger:    logger,
	}
}

// Resolve returns the customer for an order, creating one when neither
// the carrier customer ID nor the email matches an existing record.
// Contact and address creation for a new customer are best-effort: their
// failures are logged and the customer is still returned.
func (r *CustomerResolver) Resolve(ctx context.Context, client carrier.Client, settings *integration.CarrierSettings, store *integration.CarrierStore, order *carrier.Order) (*partner.Customer, error) {
	email := carrier.NormalizeEmail(order.CustomerEmail)

	if order.CustomerID != "" {
		existing, err := r.customers.FindByCarrierCustomerID(ctx, order.CustomerID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find customer by carrier id: %w", err)
		}
	}

	if email != "" {
		// guest customers are often recorded under the email itself
		existing, err := r.customers.FindByName(ctx, email)
		if err == nil {
			r.backfillCarrierID(ctx, existing, order.CustomerID)
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find customer by name: %w", err)
		}

		existing, err = r.customers.FindByContactEmail(ctx, email)
		if err == nil {
			r.backfillCarrierID(ctx, existing, order.CustomerID)
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find customer by email: %w", err)
		}
	}

	return r.create(ctx, client, settings, store, order, email)
}

// backfillCarrierID attaches a carrier customer ID to a record that was
// first seen through a guest order. Failure is non-fatal.
func (r *CustomerResolver) backfillCarrierID(ctx context.Context, customer *partner.Customer, carrierID string) {
	if carrierID == "" || customer.CarrierCustomerID != "" {
		return
	}
	customer.CarrierCustomerID = carrierID
	customer.IncrementVersion()
	if err := r.customers.Save(ctx, customer); err != nil {
		r.logger.Warn("failed to backfill carrier customer id",
			zap.String("customer_id", customer.GetID().String()),
			zap.String("carrier_customer_id", carrierID),
			zap.Error(err))
	}
}

func (r *CustomerResolver) create(ctx context.Context, client carrier.Client, settings *integration.CarrierSettings, store *integration.CarrierStore, order *carrier.Order, email string) (*partner.Customer, error) {
	var profile *carrier.CustomerProfile
	if order.CustomerID != "" {
		var err error
		profile, err = client.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			// the order itself carries enough identity to proceed
			r.logger.Warn("carrier customer lookup failed",
				zap.String("carrier_customer_id", order.CustomerID),
				zap.Error(err))
			profile = nil
		}
	}

	name := customerDisplayName(profile, order, email)
	customer, err := partner.NewCustomer(order.CustomerID, name, partner.CustomerTypeIndividual,
		settings.DefaultCustomerGroup, settings.DefaultTerritory)
	if err != nil {
		return nil, err
	}

	if err := r.customers.Save(ctx, customer); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return r.recoverExisting(ctx, order, email, err)
		}
		return nil, fmt.Errorf("save customer: %w", err)
	}

	r.logger.Info("customer created",
		zap.String("customer_id", customer.GetID().String()),
		zap.String("carrier_customer_id", customer.CarrierCustomerID),
		zap.String("name", customer.Name))

	r.attachPrimaryRecords(ctx, customer, store, order, email)
	return customer, nil
}

// recoverExisting handles the unique-key race on creation: another run
// inserted the same identity between our lookup and save.
func (r *CustomerResolver) recoverExisting(ctx context.Context, order *carrier.Order, email string, saveErr error) (*partner.Customer, error) {
	if order.CustomerID != "" {
		if existing, err := r.customers.FindByCarrierCustomerID(ctx, order.CustomerID); err == nil {
			return existing, nil
		}
	}
	if email != "" {
		if existing, err := r.customers.FindByContactEmail(ctx, email); err == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("save customer: %w", saveErr)
}

// attachPrimaryRecords creates the contact and billing address for a new
// customer. Failures here never fail order ingestion.
func (r *CustomerResolver) attachPrimaryRecords(ctx context.Context, customer *partner.Customer, store *integration.CarrierStore, order *carrier.Order, email string) {
	nameText := order.BillTo.Name
	if nameText == "" {
		nameText = order.ShipTo.Name
	}
	phone := order.BillTo.Phone
	if phone == "" {
		phone = order.ShipTo.Phone
	}

	changed := false
	if contact, err := r.contacts.Resolve(ctx, customer, nameText, email, phone); err != nil {
		r.logger.Warn("failed to create contact for new customer",
			zap.String("customer_id", customer.GetID().String()), zap.Error(err))
	} else if contact != nil {
		customer.SetPrimaryContact(contact.GetID())
		changed = true
	}

	strict := store != nil && store.StrictAddressMatch
	if address, err := r.addresses.Resolve(ctx, customer, &order.BillTo, partner.AddressTypeBilling, email, strict); err != nil {
		r.logger.Warn("failed to create address for new customer",
			zap.String("customer_id", customer.GetID().String()), zap.Error(err))
	} else if address != nil {
		customer.SetPrimaryAddress(address.GetID())
		changed = true
	}

	if changed {
		if err := r.customers.Save(ctx, customer); err != nil {
			r.logger.Warn("failed to save customer primary links",
				zap.String("customer_id", customer.GetID().String()), zap.Error(err))
		}
	}
}

// customerDisplayName picks the best available display name for a new
// customer record
func customerDisplayName(profile *carrier.CustomerProfile, order *carrier.Order, email string) string {
	if profile != nil && profile.Name != "" {
		return profile.Name
	}
	for _, candidate := range []string{order.ShipTo.Name, order.BillTo.Name, order.ShipTo.Company, order.BillTo.Company, email} {
		if candidate != "" {
			return candidate
		}
	}
	return "Guest " + order.OrderNumber
}
