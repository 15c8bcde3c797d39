package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erp/shipsync/internal/domain/shared"
)

// ErrItemNotFound is returned when no item matches a carrier SKU
var ErrItemNotFound = errors.New("catalog: item not found")

// Item is a sellable product in the catalog. Carrier order lines resolve
// to items by SKU.
type Item struct {
	shared.BaseAggregateRoot
	// Code is the internal item code, unique in the catalog
	Code string
	Name string
	// SKU is the carrier-side stock keeping unit mapped to this item
	SKU string
	// StockUOM is the unit the item is stocked in
	StockUOM string
	// SalesUOM is the unit carrier order lines are expressed in; empty
	// means same as StockUOM
	SalesUOM string
	Disabled bool
}

// NewItem creates a catalog item with validation
func NewItem(code, name, sku, stockUOM string) (*Item, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if strings.TrimSpace(stockUOM) == "" {
		stockUOM = "Nos"
	}
	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.TrimSpace(code),
		Name:              strings.TrimSpace(name),
		SKU:               strings.TrimSpace(sku),
		StockUOM:          stockUOM,
	}, nil
}

// OrderUOM returns the unit order lines for this item use
func (i *Item) OrderUOM() string {
	if i.SalesUOM != "" {
		return i.SalesUOM
	}
	return i.StockUOM
}

// ItemRepository provides catalog item persistence
type ItemRepository interface {
	shared.Repository[Item]
	// FindBySKU resolves an item by its carrier SKU
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	// FindByCode resolves an item by internal item code
	FindByCode(ctx context.Context, code string) (*Item, error)
}

// UOMConverter resolves conversion factors between units of measure
type UOMConverter interface {
	// ConversionFactor returns the multiplier converting a quantity in
	// fromUOM to toUOM for the given item code. Identity conversions
	// return 1.
	ConversionFactor(ctx context.Context, itemCode, fromUOM, toUOM string) (decimal.Decimal, error)
}
