package models

import (
	"github.com/shopspring/decimal"

	"github.com/erp/shipsync/internal/domain/catalog"
)

// ItemModel is the persistence model for the catalog Item entity.
type ItemModel struct {
	AggregateModel
	Code     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	SKU      string `gorm:"type:varchar(100);index"`
	StockUOM string `gorm:"type:varchar(50);not null;default:'Nos'"`
	SalesUOM string `gorm:"type:varchar(50)"`
	Disabled bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *catalog.Item {
	item := &catalog.Item{
		Code:     m.Code,
		Name:     m.Name,
		SKU:      m.SKU,
		StockUOM: m.StockUOM,
		SalesUOM: m.SalesUOM,
		Disabled: m.Disabled,
	}
	m.PopulateAggregateRoot(&item.BaseAggregateRoot)
	return item
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Code = i.Code
	m.Name = i.Name
	m.SKU = i.SKU
	m.StockUOM = i.StockUOM
	m.SalesUOM = i.SalesUOM
	m.Disabled = i.Disabled
}

// ItemModelFromDomain creates a new persistence model from a domain Item entity.
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// UOMConversionModel stores one conversion factor between two units of
// measure for an item.
type UOMConversionModel struct {
	BaseModel
	ItemCode string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_uom_conversion,priority:1"`
	FromUOM  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_uom_conversion,priority:2"`
	ToUOM    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_uom_conversion,priority:3"`
	Factor   decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
}

// TableName returns the table name for GORM
func (UOMConversionModel) TableName() string {
	return "uom_conversions"
}
