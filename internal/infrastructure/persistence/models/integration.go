package models

import (
	"encoding/json"
	"time"

	"github.com/erp/shipsync/internal/domain/integration"
)

// carrierStoreJSON is the jsonb shape of one storefront configuration
type carrierStoreJSON struct {
	StoreID                 string `json:"store_id"`
	StoreName               string `json:"store_name"`
	Marketplace             string `json:"marketplace"`
	Company                 string `json:"company"`
	Currency                string `json:"currency"`
	Enabled                 bool   `json:"enabled"`
	WarehouseID             string `json:"warehouse_id,omitempty"`
	CostCenter              string `json:"cost_center,omitempty"`
	TaxAccount              string `json:"tax_account,omitempty"`
	ShippingIncomeAccount   string `json:"shipping_income_account,omitempty"`
	DifferenceAccount       string `json:"difference_account,omitempty"`
	CommissionAccount       string `json:"commission_account,omitempty"`
	SalesPartner            string `json:"sales_partner,omitempty"`
	ApplyCommission         bool   `json:"apply_commission,omitempty"`
	CommissionFormula       string `json:"commission_formula,omitempty"`
	ReverseTaxOnWithholding bool   `json:"reverse_tax_on_withholding,omitempty"`
	IsAmazonStore           bool   `json:"is_amazon_store,omitempty"`
	IsShopifyStore          bool   `json:"is_shopify_store,omitempty"`
	StrictAddressMatch      bool   `json:"strict_address_match,omitempty"`
}

// CarrierSettingsModel is the persistence model for a carrier connection.
// Storefronts are configuration that travels with the connection row.
type CarrierSettingsModel struct {
	AggregateModel
	Name                 string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	Enabled              bool          `gorm:"not null;default:true;index"`
	BaseURL              string        `gorm:"type:varchar(500)"`
	APIKey               string        `gorm:"type:varchar(200);not null"`
	APISecret            string        `gorm:"type:varchar(200);not null"`
	Timeout              time.Duration `gorm:"not null;default:0"`
	SyncOrderStatus      bool          `gorm:"not null;default:false"`
	ActiveWarehouseIDs   string        `gorm:"type:jsonb;default:'[]'"`
	SinceDate            time.Time
	DefaultCustomerGroup string `gorm:"type:varchar(100)"`
	DefaultTerritory     string `gorm:"type:varchar(100)"`
	Stores               string `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (CarrierSettingsModel) TableName() string {
	return "carrier_settings"
}

// ToDomain converts the persistence model to a domain CarrierSettings aggregate.
func (m *CarrierSettingsModel) ToDomain() *integration.CarrierSettings {
	settings := &integration.CarrierSettings{
		Name:                 m.Name,
		Enabled:              m.Enabled,
		BaseURL:              m.BaseURL,
		APIKey:               m.APIKey,
		APISecret:            m.APISecret,
		Timeout:              m.Timeout,
		SyncOrderStatus:      m.SyncOrderStatus,
		SinceDate:            m.SinceDate,
		DefaultCustomerGroup: m.DefaultCustomerGroup,
		DefaultTerritory:     m.DefaultTerritory,
	}
	m.PopulateAggregateRoot(&settings.BaseAggregateRoot)

	if m.ActiveWarehouseIDs != "" {
		_ = json.Unmarshal([]byte(m.ActiveWarehouseIDs), &settings.ActiveWarehouseIDs)
	}

	var stores []carrierStoreJSON
	if m.Stores != "" {
		_ = json.Unmarshal([]byte(m.Stores), &stores)
	}
	for _, s := range stores {
		settings.Stores = append(settings.Stores, integration.CarrierStore{
			StoreID:                 s.StoreID,
			StoreName:               s.StoreName,
			Marketplace:             s.Marketplace,
			Company:                 s.Company,
			Currency:                s.Currency,
			Enabled:                 s.Enabled,
			WarehouseID:             s.WarehouseID,
			CostCenter:              s.CostCenter,
			TaxAccount:              s.TaxAccount,
			ShippingIncomeAccount:   s.ShippingIncomeAccount,
			DifferenceAccount:       s.DifferenceAccount,
			CommissionAccount:       s.CommissionAccount,
			SalesPartner:            s.SalesPartner,
			ApplyCommission:         s.ApplyCommission,
			CommissionFormula:       s.CommissionFormula,
			ReverseTaxOnWithholding: s.ReverseTaxOnWithholding,
			IsAmazonStore:           s.IsAmazonStore,
			IsShopifyStore:          s.IsShopifyStore,
			StrictAddressMatch:      s.StrictAddressMatch,
		})
	}
	return settings
}

// FromDomain populates the persistence model from a domain CarrierSettings aggregate.
func (m *CarrierSettingsModel) FromDomain(s *integration.CarrierSettings) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Enabled = s.Enabled
	m.BaseURL = s.BaseURL
	m.APIKey = s.APIKey
	m.APISecret = s.APISecret
	m.Timeout = s.Timeout
	m.SyncOrderStatus = s.SyncOrderStatus
	m.SinceDate = s.SinceDate
	m.DefaultCustomerGroup = s.DefaultCustomerGroup
	m.DefaultTerritory = s.DefaultTerritory

	warehouses := s.ActiveWarehouseIDs
	if warehouses == nil {
		warehouses = []string{}
	}
	rawWarehouses, _ := json.Marshal(warehouses)
	m.ActiveWarehouseIDs = string(rawWarehouses)

	stores := make([]carrierStoreJSON, 0, len(s.Stores))
	for _, st := range s.Stores {
		stores = append(stores, carrierStoreJSON{
			StoreID:                 st.StoreID,
			StoreName:               st.StoreName,
			Marketplace:             st.Marketplace,
			Company:                 st.Company,
			Currency:                st.Currency,
			Enabled:                 st.Enabled,
			WarehouseID:             st.WarehouseID,
			CostCenter:              st.CostCenter,
			TaxAccount:              st.TaxAccount,
			ShippingIncomeAccount:   st.ShippingIncomeAccount,
			DifferenceAccount:       st.DifferenceAccount,
			CommissionAccount:       st.CommissionAccount,
			SalesPartner:            st.SalesPartner,
			ApplyCommission:         st.ApplyCommission,
			CommissionFormula:       st.CommissionFormula,
			ReverseTaxOnWithholding: st.ReverseTaxOnWithholding,
			IsAmazonStore:           st.IsAmazonStore,
			IsShopifyStore:          st.IsShopifyStore,
			StrictAddressMatch:      st.StrictAddressMatch,
		})
	}
	rawStores, _ := json.Marshal(stores)
	m.Stores = string(rawStores)
}

// CarrierSettingsModelFromDomain creates a new persistence model from a domain CarrierSettings aggregate.
func CarrierSettingsModelFromDomain(s *integration.CarrierSettings) *CarrierSettingsModel {
	m := &CarrierSettingsModel{}
	m.FromDomain(s)
	return m
}

// IntegrationRequestModel is the persistence model for outbound call audit records.
type IntegrationRequestModel struct {
	BaseModel
	Service   string                    `gorm:"type:varchar(200);not null;index"`
	Reference string                    `gorm:"type:varchar(200);index"`
	URL       string                    `gorm:"type:varchar(500)"`
	Payload   string                    `gorm:"type:text"`
	Status    integration.RequestStatus `gorm:"type:varchar(20);not null;index"`
	Output    string                    `gorm:"type:text"`
	Error     string                    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (IntegrationRequestModel) TableName() string {
	return "integration_requests"
}

// ToDomain converts the persistence model to a domain IntegrationRequest.
func (m *IntegrationRequestModel) ToDomain() *integration.IntegrationRequest {
	return &integration.IntegrationRequest{
		BaseEntity: m.BaseModel.ToDomain(),
		Service:    m.Service,
		Reference:  m.Reference,
		URL:        m.URL,
		Payload:    m.Payload,
		Status:     m.Status,
		Output:     m.Output,
		Error:      m.Error,
	}
}

// FromDomain populates the persistence model from a domain IntegrationRequest.
func (m *IntegrationRequestModel) FromDomain(r *integration.IntegrationRequest) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Service = r.Service
	m.Reference = r.Reference
	m.URL = r.URL
	m.Payload = r.Payload
	m.Status = r.Status
	m.Output = r.Output
	m.Error = r.Error
}

// IntegrationRequestModelFromDomain creates a new persistence model from a domain IntegrationRequest.
func IntegrationRequestModelFromDomain(r *integration.IntegrationRequest) *IntegrationRequestModel {
	m := &IntegrationRequestModel{}
	m.FromDomain(r)
	return m
}
