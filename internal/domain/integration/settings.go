package integration

import (
	"context"
	"strings"
	"time"

	"github.com/erp/shipsync/internal/domain/shared"
)

// CarrierStore is a single storefront configured under a carrier
// connection. Financial posting accounts are per-store because each
// marketplace settles differently.
type CarrierStore struct {
	StoreID     string
	StoreName   string
	Marketplace string
	Company     string
	Currency    string
	Enabled     bool
	// WarehouseID sources stock for this store's orders; orders routed
	// to other warehouses are skipped when the settings restrict them
	WarehouseID string
	CostCenter  string
	// Financial accounts charge lines post against
	TaxAccount            string
	ShippingIncomeAccount string
	DifferenceAccount     string
	CommissionAccount     string
	SalesPartner          string
	// ApplyCommission enables formula-based commission for this store
	ApplyCommission   bool
	CommissionFormula string
	// ReverseTaxOnWithholding appends a negating tax line for stores
	// where the marketplace withholds and remits sales tax itself
	ReverseTaxOnWithholding bool
	IsAmazonStore           bool
	IsShopifyStore          bool
	// StrictAddressMatch includes the postal code in address dedup
	StrictAddressMatch bool
}

// CarrierSettings is one carrier API connection with its storefronts
type CarrierSettings struct {
	shared.BaseAggregateRoot
	Name      string
	Enabled   bool
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	// SyncOrderStatus enables the reverse status push to the carrier
	SyncOrderStatus bool
	// ActiveWarehouseIDs restricts ingestion to orders routed to these
	// warehouses; empty means accept all
	ActiveWarehouseIDs []string
	// SinceDate drops orders created before this date; zero disables
	SinceDate time.Time
	// DefaultCustomerGroup and DefaultTerritory seed new customers
	DefaultCustomerGroup string
	DefaultTerritory     string
	Stores               []CarrierStore
}

// NewCarrierSettings creates a settings record with validation
func NewCarrierSettings(name, baseURL, apiKey, apiSecret string) (*CarrierSettings, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_SETTINGS", "Settings name cannot be empty")
	}
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, shared.NewDomainError("INVALID_SETTINGS", "API credentials cannot be empty")
	}
	return &CarrierSettings{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 strings.TrimSpace(name),
		Enabled:              true,
		BaseURL:              strings.TrimSpace(baseURL),
		APIKey:               apiKey,
		APISecret:            apiSecret,
		Timeout:              30 * time.Second,
		DefaultCustomerGroup: "Individual",
		DefaultTerritory:     "All Territories",
	}, nil
}

// EnabledStores returns the stores currently enabled for ingestion
func (s *CarrierSettings) EnabledStores() []CarrierStore {
	stores := make([]CarrierStore, 0, len(s.Stores))
	for _, store := range s.Stores {
		if store.Enabled {
			stores = append(stores, store)
		}
	}
	return stores
}

// FindStore returns the store with the given carrier store ID
func (s *CarrierSettings) FindStore(storeID string) (*CarrierStore, bool) {
	for i := range s.Stores {
		if s.Stores[i].StoreID == storeID {
			return &s.Stores[i], true
		}
	}
	return nil, false
}

// AcceptsWarehouse reports whether orders routed to the given warehouse
// pass the settings-level warehouse filter. An order with no warehouse
// always passes.
func (s *CarrierSettings) AcceptsWarehouse(warehouseID string) bool {
	if len(s.ActiveWarehouseIDs) == 0 || warehouseID == "" {
		return true
	}
	for _, id := range s.ActiveWarehouseIDs {
		if id == warehouseID {
			return true
		}
	}
	return false
}

// SettingsRepository provides carrier settings persistence
type SettingsRepository interface {
	shared.Repository[CarrierSettings]
	// FindEnabled lists all enabled carrier connections
	FindEnabled(ctx context.Context) ([]CarrierSettings, error)
	// FindByStore locates the connection and store serving a given
	// carrier store ID and marketplace; used by the reverse status push
	FindByStore(ctx context.Context, storeID, marketplace string) (*CarrierSettings, *CarrierStore, error)
}
