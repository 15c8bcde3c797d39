package integration

import (
	"context"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/trade"
)

// Hook signatures. Each hook has a no-op default; deployments register
// replacements to customize ingestion per marketplace.
type (
	// ListParamsHook mutates the order pull parameters before each fetch
	ListParamsHook func(ctx context.Context, settings *CarrierSettings, store *CarrierStore, params *carrier.ListOrdersParams)

	// OrderVetoHook returns true to skip an order entirely
	OrderVetoHook func(ctx context.Context, store *CarrierStore, order *carrier.Order) bool

	// OrderEnrichHook mutates a fetched order before materialization,
	// typically with marketplace-specific data for Amazon or Shopify
	// stores
	OrderEnrichHook func(ctx context.Context, store *CarrierStore, order *carrier.Order) error

	// ItemsHook transforms the sellable lines before they are added to
	// the sales order
	ItemsHook func(ctx context.Context, store *CarrierStore, order *carrier.Order, items []carrier.OrderItem) []carrier.OrderItem

	// OrderLifecycleHook observes the sales order before submission and
	// after submission
	OrderLifecycleHook func(ctx context.Context, store *CarrierStore, order *carrier.Order, salesOrder *trade.SalesOrder) error
)

// Hooks is the extension registry for the ingestion pipeline. The zero
// value is not usable; construct with NewHooks.
type Hooks struct {
	ListParams ListParamsHook
	VetoOrder  OrderVetoHook
	Enrich     OrderEnrichHook
	Items      ItemsHook
	PreSubmit  OrderLifecycleHook
	PostSubmit OrderLifecycleHook
}

// NewHooks returns a registry with no-op defaults
func NewHooks() *Hooks {
	return &Hooks{
		ListParams: func(ctx context.Context, settings *CarrierSettings, store *CarrierStore, params *carrier.ListOrdersParams) {
		},
		VetoOrder: func(ctx context.Context, store *CarrierStore, order *carrier.Order) bool {
			return false
		},
		Enrich: func(ctx context.Context, store *CarrierStore, order *carrier.Order) error {
			return nil
		},
		Items: func(ctx context.Context, store *CarrierStore, order *carrier.Order, items []carrier.OrderItem) []carrier.OrderItem {
			return items
		},
		PreSubmit: func(ctx context.Context, store *CarrierStore, order *carrier.Order, salesOrder *trade.SalesOrder) error {
			return nil
		},
		PostSubmit: func(ctx context.Context, store *CarrierStore, order *carrier.Order, salesOrder *trade.SalesOrder) error {
			return nil
		},
	}
}
