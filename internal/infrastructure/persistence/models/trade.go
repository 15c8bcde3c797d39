package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipsync/internal/domain/trade"
)

// salesOrderItemJSON is the jsonb shape of one product line
type salesOrderItemJSON struct {
	CarrierOrderItemID string          `json:"carrier_order_item_id"`
	ItemCode           string          `json:"item_code"`
	ItemName           string          `json:"item_name"`
	Quantity           int             `json:"quantity"`
	Rate               decimal.Decimal `json:"rate"`
	Amount             decimal.Decimal `json:"amount"`
	UOM                string          `json:"uom"`
	ConversionFactor   decimal.Decimal `json:"conversion_factor"`
	WarehouseID        string          `json:"warehouse_id"`
	Note               string          `json:"note,omitempty"`
}

// chargeLineJSON is the jsonb shape of one order-level charge
type chargeLineJSON struct {
	Type           trade.ChargeType `json:"type"`
	AccountHead    string           `json:"account_head"`
	Description    string           `json:"description"`
	Amount         decimal.Decimal  `json:"amount"`
	CostCenter     string           `json:"cost_center,omitempty"`
	IncludedInPaid bool             `json:"included_in_paid,omitempty"`
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate.
// Lines and charges are document content and travel with the order row
// as jsonb.
type SalesOrderModel struct {
	AggregateModel
	CarrierOrderID       string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderNumber          string            `gorm:"type:varchar(100);index"`
	StoreID              string            `gorm:"type:varchar(50);index"`
	Marketplace          string            `gorm:"type:varchar(100)"`
	CustomerID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerName         string            `gorm:"type:varchar(200)"`
	Currency             string            `gorm:"type:varchar(10)"`
	SalesPartner         string            `gorm:"type:varchar(200)"`
	OrderDate            time.Time         `gorm:"not null"`
	DeliveryDate         time.Time
	BillingAddressID     *uuid.UUID        `gorm:"type:uuid"`
	ShippingAddressID    *uuid.UUID        `gorm:"type:uuid"`
	Items                string            `gorm:"type:jsonb;default:'[]'"`
	Charges              string            `gorm:"type:jsonb;default:'[]'"`
	DiscountAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionTotal      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid           decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CustomerNotes        string            `gorm:"type:text"`
	InternalNotes        string            `gorm:"type:text"`
	Status               trade.OrderStatus `gorm:"type:varchar(20);not null;index"`
	DocState             trade.DocState    `gorm:"type:varchar(20);not null;index"`
	Total                decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTaxesAndCharges decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal           decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder aggregate.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		CarrierOrderID:       m.CarrierOrderID,
		OrderNumber:          m.OrderNumber,
		StoreID:              m.StoreID,
		Marketplace:          m.Marketplace,
		CustomerID:           m.CustomerID,
		CustomerName:         m.CustomerName,
		Currency:             m.Currency,
		SalesPartner:         m.SalesPartner,
		OrderDate:            m.OrderDate,
		DeliveryDate:         m.DeliveryDate,
		BillingAddressID:     m.BillingAddressID,
		ShippingAddressID:    m.ShippingAddressID,
		DiscountAmount:       m.DiscountAmount,
		CommissionTotal:      m.CommissionTotal,
		AmountPaid:           m.AmountPaid,
		CustomerNotes:        m.CustomerNotes,
		InternalNotes:        m.InternalNotes,
		Status:               m.Status,
		DocState:             m.DocState,
		Total:                m.Total,
		TotalTaxesAndCharges: m.TotalTaxesAndCharges,
		GrandTotal:           m.GrandTotal,
	}
	m.PopulateAggregateRoot(&order.BaseAggregateRoot)

	var items []salesOrderItemJSON
	if m.Items != "" {
		_ = json.Unmarshal([]byte(m.Items), &items)
	}
	for _, it := range items {
		order.Items = append(order.Items, trade.SalesOrderItem{
			CarrierOrderItemID: it.CarrierOrderItemID,
			ItemCode:           it.ItemCode,
			ItemName:           it.ItemName,
			Quantity:           it.Quantity,
			Rate:               it.Rate,
			Amount:             it.Amount,
			UOM:                it.UOM,
			ConversionFactor:   it.ConversionFactor,
			WarehouseID:        it.WarehouseID,
			Note:               it.Note,
		})
	}

	var charges []chargeLineJSON
	if m.Charges != "" {
		_ = json.Unmarshal([]byte(m.Charges), &charges)
	}
	for _, ch := range charges {
		order.Charges = append(order.Charges, trade.ChargeLine{
			Type:           ch.Type,
			AccountHead:    ch.AccountHead,
			Description:    ch.Description,
			Amount:         ch.Amount,
			CostCenter:     ch.CostCenter,
			IncludedInPaid: ch.IncludedInPaid,
		})
	}
	return order
}

// FromDomain populates the persistence model from a domain SalesOrder aggregate.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.CarrierOrderID = o.CarrierOrderID
	m.OrderNumber = o.OrderNumber
	m.StoreID = o.StoreID
	m.Marketplace = o.Marketplace
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.Currency = o.Currency
	m.SalesPartner = o.SalesPartner
	m.OrderDate = o.OrderDate
	m.DeliveryDate = o.DeliveryDate
	m.BillingAddressID = o.BillingAddressID
	m.ShippingAddressID = o.ShippingAddressID
	m.DiscountAmount = o.DiscountAmount
	m.CommissionTotal = o.CommissionTotal
	m.AmountPaid = o.AmountPaid
	m.CustomerNotes = o.CustomerNotes
	m.InternalNotes = o.InternalNotes
	m.Status = o.Status
	m.DocState = o.DocState
	m.Total = o.Total
	m.TotalTaxesAndCharges = o.TotalTaxesAndCharges
	m.GrandTotal = o.GrandTotal

	items := make([]salesOrderItemJSON, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, salesOrderItemJSON{
			CarrierOrderItemID: it.CarrierOrderItemID,
			ItemCode:           it.ItemCode,
			ItemName:           it.ItemName,
			Quantity:           it.Quantity,
			Rate:               it.Rate,
			Amount:             it.Amount,
			UOM:                it.UOM,
			ConversionFactor:   it.ConversionFactor,
			WarehouseID:        it.WarehouseID,
			Note:               it.Note,
		})
	}
	rawItems, _ := json.Marshal(items)
	m.Items = string(rawItems)

	charges := make([]chargeLineJSON, 0, len(o.Charges))
	for _, ch := range o.Charges {
		charges = append(charges, chargeLineJSON{
			Type:           ch.Type,
			AccountHead:    ch.AccountHead,
			Description:    ch.Description,
			Amount:         ch.Amount,
			CostCenter:     ch.CostCenter,
			IncludedInPaid: ch.IncludedInPaid,
		})
	}
	rawCharges, _ := json.Marshal(charges)
	m.Charges = string(rawCharges)
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder aggregate.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}
