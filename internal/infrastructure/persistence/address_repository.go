package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/infrastructure/persistence/models"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Address, error) {
	var model models.AddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByLocation matches an address by normalized first line and city.
// When strict is true the postal code must also match.
func (r *GormAddressRepository) FindByLocation(ctx context.Context, line1, city, postalCode string, strict bool) (*partner.Address, error) {
	if strings.TrimSpace(line1) == "" {
		return nil, shared.ErrNotFound
	}

	query := r.db.WithContext(ctx).
		Where("LOWER(TRIM(line1)) = ? AND LOWER(TRIM(city)) = ?",
			normalizeLocation(line1), normalizeLocation(city))
	if strict {
		query = query.Where("LOWER(TRIM(postal_code)) = ?", normalizeLocation(postalCode))
	}

	var model models.AddressModel
	if err := query.First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func normalizeLocation(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// FindAll finds all addresses matching the filter
func (r *GormAddressRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Address, error) {
	var addressModels []models.AddressModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.AddressModel{}), filter)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("line1 ILIKE ? OR city ILIKE ? OR title ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Find(&addressModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]partner.Address, len(addressModels))
	for i := range addressModels {
		addresses[i] = *addressModels[i].ToDomain()
	}
	return addresses, nil
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, address *partner.Address) error {
	model := models.AddressModelFromDomain(address)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes an address
func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AddressModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts addresses matching the filter
func (r *GormAddressRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AddressModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAddressRepository implements AddressRepository
var _ partner.AddressRepository = (*GormAddressRepository)(nil)
