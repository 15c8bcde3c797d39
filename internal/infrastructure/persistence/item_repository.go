package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/catalog"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/infrastructure/persistence/models"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySKU resolves an item by its carrier SKU
func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	if sku == "" {
		return nil, catalog.ErrItemNotFound
	}
	var model models.ItemModel
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode resolves an item by internal item code
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	if code == "" {
		return nil, catalog.ErrItemNotFound
	}
	var model models.ItemModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all items matching the filter
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	var itemModels []models.ItemModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.ItemModel{}), filter)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR sku ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]catalog.Item, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, nil
}

// Save creates or updates an item. An item code collision surfaces as
// shared.ErrAlreadyExists.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	model := models.ItemModelFromDomain(item)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes an item
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts items matching the filter
func (r *GormItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ItemModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)

// GormUOMConverter resolves conversion factors from the uom_conversions
// table. Unknown pairs fall back to the identity factor so a missing
// conversion row never blocks an order line.
type GormUOMConverter struct {
	db *gorm.DB
}

// NewGormUOMConverter creates a new GormUOMConverter
func NewGormUOMConverter(db *gorm.DB) *GormUOMConverter {
	return &GormUOMConverter{db: db}
}

// ConversionFactor returns the multiplier converting a quantity in
// fromUOM to toUOM for the given item code
func (c *GormUOMConverter) ConversionFactor(ctx context.Context, itemCode, fromUOM, toUOM string) (decimal.Decimal, error) {
	if fromUOM == toUOM {
		return decimal.NewFromInt(1), nil
	}

	var model models.UOMConversionModel
	err := c.db.WithContext(ctx).
		Where("item_code = ? AND from_uom = ? AND to_uom = ?", itemCode, fromUOM, toUOM).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Decimal{}, err
	}
	return model.Factor, nil
}

// Ensure GormUOMConverter implements UOMConverter
var _ catalog.UOMConverter = (*GormUOMConverter)(nil)
