package carrier

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountLineKey is the line-item key the carrier uses for synthetic
// marketplace discount lines. A line carrying this key is never a real
// product; its value accumulates into an order-level discount instead.
const DiscountLineKey = "discount"

// OrderStatus represents the status of an order on the carrier platform
type OrderStatus string

const (
	OrderStatusAwaitingPayment    OrderStatus = "awaiting_payment"
	OrderStatusAwaitingShipment   OrderStatus = "awaiting_shipment"
	OrderStatusOnHold             OrderStatus = "on_hold"
	OrderStatusPendingFulfillment OrderStatus = "pending_fulfillment"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// IsValid returns true if the status is a known carrier status code
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusAwaitingPayment, OrderStatusAwaitingShipment, OrderStatusOnHold,
		OrderStatusPendingFulfillment, OrderStatusShipped, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Party represents a named postal contact attached to an order as bill-to
// or ship-to, and doubles as the carrier's customer identity record.
type Party struct {
	Name       string
	Company    string
	Street1    string
	Street2    string
	Street3    string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	Email      string
}

// HasAddress returns true if the party carries a usable street address.
// A party with no first street line contributes no address record.
func (p *Party) HasAddress() bool {
	return strings.TrimSpace(p.Street1) != ""
}

// ItemOption is a free-form named option attached to an order item
type ItemOption struct {
	Name  string
	Value string
}

// OrderItem represents a line item in a carrier order
type OrderItem struct {
	// OrderItemID is the carrier's identifier for this line
	OrderItemID string
	// LineItemKey detects synthetic lines; see DiscountLineKey
	LineItemKey string
	// SKU is the carrier-side stock keeping unit
	SKU string
	// Name is the product display name
	Name string
	// Quantity ordered; lines with quantity < 1 are never materialized
	Quantity int
	// UnitPrice is the per-unit rate
	UnitPrice decimal.Decimal
	// Options carries free-form metadata key/value pairs
	Options []ItemOption
}

// IsDiscount returns true if this line is a synthetic marketplace discount
func (i *OrderItem) IsDiscount() bool {
	return i.LineItemKey == DiscountLineKey
}

// Note returns the value of the option named "Description", if present
func (i *OrderItem) Note() string {
	for _, opt := range i.Options {
		if opt.Name == "Description" {
			return opt.Value
		}
	}
	return ""
}

// AdvancedOptions carries carrier-side routing metadata for an order
type AdvancedOptions struct {
	WarehouseID string
	StoreID     string
}

// Order represents an order pulled from the carrier platform (read-only)
type Order struct {
	// OrderID is the carrier's unique order identifier
	OrderID string
	// OrderNumber is the marketplace-facing order number
	OrderNumber string
	// StoreID identifies which carrier store the order belongs to
	StoreID string
	// CustomerID is the carrier's customer identifier (may be empty)
	CustomerID string
	// CustomerEmail is the customer's email address (may be empty)
	CustomerEmail string
	BillTo        Party
	ShipTo        Party
	Items         []OrderItem
	TaxAmount     decimal.Decimal
	// ShippingAmount is the shipping charge as reported by the carrier
	ShippingAmount decimal.Decimal
	// AmountPaid is what the buyer actually paid; frequently differs from
	// the computed order total on marketplace-fulfilled orders
	AmountPaid      decimal.Decimal
	OrderDate       time.Time
	ModifyDate      time.Time
	ShipDate        time.Time
	Status          OrderStatus
	CustomerNotes   string
	InternalNotes   string
	AdvancedOptions AdvancedOptions
}

// NormalizeEmail trims and lowercases an email for identity matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
