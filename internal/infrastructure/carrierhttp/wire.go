package carrierhttp

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/shipsync/internal/domain/carrier"
)

// The carrier API encodes timestamps without a zone, sometimes with
// seven fractional digits and sometimes with none.
var wireTimeLayouts = []string{
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseWireTime(value string) time.Time {
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

type wireAddress struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2"`
	Street3    string `json:"street3"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func (a *wireAddress) toParty() carrier.Party {
	return carrier.Party{
		Name:       a.Name,
		Company:    a.Company,
		Street1:    a.Street1,
		Street2:    a.Street2,
		Street3:    a.Street3,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		Email:      a.Email,
	}
}

func partyToWire(p carrier.Party) wireAddress {
	return wireAddress{
		Name:       p.Name,
		Company:    p.Company,
		Street1:    p.Street1,
		Street2:    p.Street2,
		Street3:    p.Street3,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
		Phone:      p.Phone,
		Email:      p.Email,
	}
}

type wireItemOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type wireOrderItem struct {
	OrderItemID int64            `json:"orderItemId"`
	LineItemKey string           `json:"lineItemKey"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   float64          `json:"unitPrice"`
	Options     []wireItemOption `json:"options"`
}

type wireAdvancedOptions struct {
	WarehouseID *int64 `json:"warehouseId"`
	StoreID     *int64 `json:"storeId"`
}

type wireOrder struct {
	OrderID         int64               `json:"orderId"`
	OrderNumber     string              `json:"orderNumber"`
	OrderDate       string              `json:"orderDate"`
	ModifyDate      string              `json:"modifyDate"`
	ShipDate        string              `json:"shipDate"`
	OrderStatus     string              `json:"orderStatus"`
	CustomerID      *int64              `json:"customerId"`
	CustomerEmail   string              `json:"customerEmail"`
	BillTo          wireAddress         `json:"billTo"`
	ShipTo          wireAddress         `json:"shipTo"`
	Items           []wireOrderItem     `json:"items"`
	TaxAmount       float64             `json:"taxAmount"`
	ShippingAmount  float64             `json:"shippingAmount"`
	AmountPaid      float64             `json:"amountPaid"`
	CustomerNotes   string              `json:"customerNotes"`
	InternalNotes   string              `json:"internalNotes"`
	AdvancedOptions wireAdvancedOptions `json:"advancedOptions"`
}

func (o *wireOrder) toDomain() carrier.Order {
	order := carrier.Order{
		OrderID:        strconv.FormatInt(o.OrderID, 10),
		OrderNumber:    o.OrderNumber,
		CustomerEmail:  o.CustomerEmail,
		BillTo:         o.BillTo.toParty(),
		ShipTo:         o.ShipTo.toParty(),
		TaxAmount:      decimal.NewFromFloat(o.TaxAmount),
		ShippingAmount: decimal.NewFromFloat(o.ShippingAmount),
		AmountPaid:     decimal.NewFromFloat(o.AmountPaid),
		OrderDate:      parseWireTime(o.OrderDate),
		ModifyDate:     parseWireTime(o.ModifyDate),
		ShipDate:       parseWireTime(o.ShipDate),
		Status:         carrier.OrderStatus(o.OrderStatus),
		CustomerNotes:  o.CustomerNotes,
		InternalNotes:  o.InternalNotes,
	}

	if o.CustomerID != nil {
		order.CustomerID = strconv.FormatInt(*o.CustomerID, 10)
	}
	if o.AdvancedOptions.WarehouseID != nil {
		order.AdvancedOptions.WarehouseID = strconv.FormatInt(*o.AdvancedOptions.WarehouseID, 10)
	}
	if o.AdvancedOptions.StoreID != nil {
		order.AdvancedOptions.StoreID = strconv.FormatInt(*o.AdvancedOptions.StoreID, 10)
		order.StoreID = order.AdvancedOptions.StoreID
	}

	order.Items = make([]carrier.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		options := make([]carrier.ItemOption, 0, len(item.Options))
		for _, opt := range item.Options {
			options = append(options, carrier.ItemOption{Name: opt.Name, Value: opt.Value})
		}
		order.Items = append(order.Items, carrier.OrderItem{
			OrderItemID: strconv.FormatInt(item.OrderItemID, 10),
			LineItemKey: item.LineItemKey,
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
			Options:     options,
		})
	}

	return order
}

type wireOrderList struct {
	Orders []wireOrder `json:"orders"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Pages  int         `json:"pages"`
}

type wireCustomer struct {
	CustomerID  int64  `json:"customerId"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (c *wireCustomer) toDomain() *carrier.CustomerProfile {
	return &carrier.CustomerProfile{
		CustomerID: strconv.FormatInt(c.CustomerID, 10),
		Name:       c.Name,
		Company:    c.Company,
		Street1:    c.Street1,
		Street2:    c.Street2,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.CountryCode,
		Phone:      c.Phone,
		Email:      c.Email,
	}
}

type wireStore struct {
	StoreID       int64  `json:"storeId"`
	StoreName     string `json:"storeName"`
	MarketplaceID int64  `json:"marketplaceId"`
	Marketplace   string `json:"marketplaceName"`
	Active        bool   `json:"active"`
}

func (s *wireStore) toDomain() carrier.Store {
	return carrier.Store{
		StoreID:       strconv.FormatInt(s.StoreID, 10),
		StoreName:     s.StoreName,
		MarketplaceID: strconv.FormatInt(s.MarketplaceID, 10),
		Marketplace:   s.Marketplace,
		Active:        s.Active,
	}
}

// statusUpdateRequest is the payload for the reverse status push. The
// carrier upserts by order key, so the push carries enough of the order
// to round-trip.
type statusUpdateRequest struct {
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	OrderKey    string      `json:"orderKey"`
	OrderDate   string      `json:"orderDate"`
	OrderStatus string      `json:"orderStatus"`
	StoreID     string      `json:"storeId"`
	BillTo      wireAddress `json:"billTo"`
	ShipTo      wireAddress `json:"shipTo"`
}

type statusUpdateResponse struct {
	OrderID     int64  `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
	ModifyDate  string `json:"modifyDate"`
}
