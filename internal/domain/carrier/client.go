package carrier

import (
	"context"
	"errors"
	"time"
)

// Carrier integration errors
var (
	ErrCarrierUnavailable   = errors.New("carrier: platform unavailable")
	ErrCarrierRequestFailed = errors.New("carrier: platform request failed")
	ErrOrderNotFound        = errors.New("carrier: order not found")
	ErrCustomerNotFound     = errors.New("carrier: customer not found")
	ErrInvalidCredentials   = errors.New("carrier: invalid credentials")
	ErrRateLimited          = errors.New("carrier: rate limited")
)

// ListOrdersParams filters an order pull from the carrier platform
type ListOrdersParams struct {
	StoreID string
	// ModifiedAfter bounds the pull window by last modification time
	ModifiedAfter  time.Time
	ModifiedBefore time.Time
	Status         OrderStatus
	Page           int
	PageSize       int
}

// OrderPage is a single page of an order listing
type OrderPage struct {
	Orders     []Order
	Page       int
	TotalPages int
}

// HasNext returns true if more pages follow this one
func (p *OrderPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// CustomerProfile is the carrier's own record for a customer, fetched by
// carrier customer ID. Marketplace orders often have no such record.
type CustomerProfile struct {
	CustomerID string
	Name       string
	Company    string
	Street1    string
	Street2    string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	Email      string
}

// StatusUpdate is a reverse status push for a single carrier order
type StatusUpdate struct {
	OrderID     string
	OrderNumber string
	StoreID     string
	OrderDate   time.Time
	Status      OrderStatus
	BillTo      Party
	ShipTo      Party
}

// StatusUpdateResult reports the carrier's acknowledgement of a push
type StatusUpdateResult struct {
	OrderID    string
	Status     OrderStatus
	ModifyDate time.Time
}

// Store describes a storefront configured on the carrier platform
type Store struct {
	StoreID       string
	StoreName     string
	MarketplaceID string
	Marketplace   string
	Active        bool
}

// Client is the outbound port to the carrier platform. Implementations
// live in the infrastructure layer.
type Client interface {
	// ListOrders pulls one page of orders matching the given filters
	ListOrders(ctx context.Context, params ListOrdersParams) (*OrderPage, error)

	// GetCustomer fetches the carrier's customer record by its ID
	GetCustomer(ctx context.Context, customerID string) (*CustomerProfile, error)

	// ListStores lists the storefronts available on the connected account
	ListStores(ctx context.Context) ([]Store, error)

	// UpdateOrderStatus pushes a status change back to the carrier
	UpdateOrderStatus(ctx context.Context, update StatusUpdate) (*StatusUpdateResult, error)
}
