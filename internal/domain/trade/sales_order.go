package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipsync/internal/domain/shared"
)

// OrderStatus represents the billing/delivery status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "Draft"
	OrderStatusToBill    OrderStatus = "To Bill"
	OrderStatusToDeliver OrderStatus = "To Deliver"
	OrderStatusOnHold    OrderStatus = "On Hold"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// IsValid returns true if the status is a known sales order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusToBill, OrderStatusToDeliver,
		OrderStatusOnHold, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// DocState tracks the document lifecycle of a sales order
type DocState string

const (
	DocStateDraft     DocState = "draft"
	DocStateSubmitted DocState = "submitted"
	DocStateCancelled DocState = "cancelled"
)

// ChargeType classifies how a charge line amount is interpreted
type ChargeType string

// ChargeTypeActual is a flat amount charge, the only kind carrier orders
// produce
const ChargeTypeActual ChargeType = "Actual"

// ChargeLine is an order-level tax or charge posted against an account
type ChargeLine struct {
	Type        ChargeType
	AccountHead string
	Description string
	Amount      decimal.Decimal
	CostCenter  string
	// IncludedInPaid marks charges the buyer's payment already covers,
	// such as the marketplace commission
	IncludedInPaid bool
}

// SalesOrderItem is a product line on a sales order
type SalesOrderItem struct {
	// CarrierOrderItemID links back to the carrier line for traceability
	CarrierOrderItemID string
	ItemCode           string
	ItemName           string
	Quantity           int
	// Rate is the per-unit selling price
	Rate decimal.Decimal
	// Amount is Rate * Quantity
	Amount decimal.Decimal
	UOM    string
	// ConversionFactor converts order UOM to stock UOM; 1 for identity
	ConversionFactor decimal.Decimal
	WarehouseID      string
	Note             string
}

// SalesOrder is a sales order materialized from a carrier order. One
// carrier order maps to at most one sales order; CarrierOrderID is the
// idempotency key.
type SalesOrder struct {
	shared.BaseAggregateRoot
	CarrierOrderID string
	OrderNumber    string
	StoreID        string
	Marketplace    string
	CustomerID     uuid.UUID
	CustomerName   string
	Currency       string
	SalesPartner   string
	OrderDate      time.Time
	DeliveryDate   time.Time
	// BillingAddressID and ShippingAddressID reference resolved partner
	// addresses; nil when the carrier supplied no usable address
	BillingAddressID  *uuid.UUID
	ShippingAddressID *uuid.UUID
	Items             []SalesOrderItem
	Charges           []ChargeLine
	// DiscountAmount is the accumulated absolute value of synthetic
	// discount lines, applied against the grand total
	DiscountAmount decimal.Decimal
	// CommissionTotal is the marketplace commission computed for this
	// order; zero when no formula is configured or evaluation failed
	CommissionTotal decimal.Decimal
	// AmountPaid is the amount the buyer paid on the carrier platform
	AmountPaid    decimal.Decimal
	CustomerNotes string
	InternalNotes string
	Status        OrderStatus
	DocState      DocState
	// Total is the sum of item amounts before charges and discount
	Total decimal.Decimal
	// TotalTaxesAndCharges is the sum of all charge line amounts
	TotalTaxesAndCharges decimal.Decimal
	// GrandTotal is Total + TotalTaxesAndCharges - DiscountAmount,
	// rounded to 2 decimal places
	GrandTotal decimal.Decimal
}

// NewSalesOrder creates a draft sales order for a carrier order
func NewSalesOrder(carrierOrderID, orderNumber, storeID string, customerID uuid.UUID, orderDate time.Time) (*SalesOrder, error) {
	if strings.TrimSpace(carrierOrderID) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Carrier order ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer ID cannot be empty")
	}

	return &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CarrierOrderID:    strings.TrimSpace(carrierOrderID),
		OrderNumber:       strings.TrimSpace(orderNumber),
		StoreID:           storeID,
		CustomerID:        customerID,
		OrderDate:         orderDate,
		Status:            OrderStatusDraft,
		DocState:          DocStateDraft,
	}, nil
}

// AddItem appends a product line and recalculates totals. Lines with a
// quantity below one are rejected.
func (o *SalesOrder) AddItem(item SalesOrderItem) error {
	if o.DocState != DocStateDraft {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "Items can only be added to draft orders")
	}
	if item.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
	}
	if strings.TrimSpace(item.ItemCode) == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}

	item.Amount = item.Rate.Mul(decimal.NewFromInt(int64(item.Quantity)))
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	return nil
}

// AddCharge appends an order-level charge line and recalculates totals.
// Zero-amount charges are dropped silently.
func (o *SalesOrder) AddCharge(charge ChargeLine) error {
	if o.DocState != DocStateDraft {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "Charges can only be added to draft orders")
	}
	if charge.Amount.IsZero() {
		return nil
	}
	if charge.Type == "" {
		charge.Type = ChargeTypeActual
	}
	o.Charges = append(o.Charges, charge)
	o.recalculateTotals()
	return nil
}

// ApplyDiscount adds to the order-level discount. The value is taken as
// an absolute amount regardless of sign.
func (o *SalesOrder) ApplyDiscount(amount decimal.Decimal) error {
	if o.DocState != DocStateDraft {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "Discounts can only be applied to draft orders")
	}
	o.DiscountAmount = o.DiscountAmount.Add(amount.Abs())
	o.recalculateTotals()
	return nil
}

// SetCommission records the computed marketplace commission. The amount
// itself posts as a charge line; this keeps the rolled-up figure.
func (o *SalesOrder) SetCommission(amount decimal.Decimal) error {
	if o.DocState != DocStateDraft {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "Commission can only be set on draft orders")
	}
	o.CommissionTotal = amount
	return nil
}

// Difference is the gap between what the buyer paid and the computed
// grand total. Zero when the carrier reported no payment.
func (o *SalesOrder) Difference() decimal.Decimal {
	if o.AmountPaid.IsZero() {
		return decimal.Zero
	}
	return o.AmountPaid.Sub(o.GrandTotal)
}

// Submit moves a draft order to the submitted state with the given
// status. An order with no product lines cannot be submitted.
func (o *SalesOrder) Submit(status OrderStatus) error {
	if o.DocState != DocStateDraft {
		return shared.NewDomainError("ORDER_NOT_DRAFT", "Only draft orders can be submitted")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("ORDER_EMPTY", "Cannot submit an order with no items")
	}
	if !status.IsValid() || status == OrderStatusDraft || status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATUS", "Invalid submission status")
	}
	o.DocState = DocStateSubmitted
	o.Status = status
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order. Draft orders cancel directly; submitted
// orders move to the cancelled document state.
func (o *SalesOrder) Cancel() error {
	if o.DocState == DocStateCancelled {
		return shared.NewDomainError("ORDER_CANCELLED", "Order is already cancelled")
	}
	o.DocState = DocStateCancelled
	o.Status = OrderStatusCancelled
	o.IncrementVersion()
	return nil
}

// UpdateStatus changes the status of a submitted order
func (o *SalesOrder) UpdateStatus(status OrderStatus) error {
	if o.DocState != DocStateSubmitted {
		return shared.NewDomainError("ORDER_NOT_SUBMITTED", "Status can only change on submitted orders")
	}
	if !status.IsValid() || status == OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Unknown sales order status")
	}
	if status == OrderStatusCancelled {
		return o.Cancel()
	}
	o.Status = status
	o.IncrementVersion()
	return nil
}

// TotalQuantity sums the quantities across all product lines
func (o *SalesOrder) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o *SalesOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	charges := decimal.Zero
	for _, charge := range o.Charges {
		charges = charges.Add(charge.Amount)
	}
	o.Total = total
	o.TotalTaxesAndCharges = charges
	o.GrandTotal = total.Add(charges).Sub(o.DiscountAmount).Round(2)
}
