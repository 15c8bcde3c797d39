package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/infrastructure/persistence/models"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByID finds a carrier connection by its ID
func (r *GormSettingsRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.CarrierSettings, error) {
	var model models.CarrierSettingsModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindEnabled lists all enabled carrier connections
func (r *GormSettingsRepository) FindEnabled(ctx context.Context) ([]integration.CarrierSettings, error) {
	var settingsModels []models.CarrierSettingsModel
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("name ASC").
		Find(&settingsModels).Error; err != nil {
		return nil, err
	}

	settings := make([]integration.CarrierSettings, len(settingsModels))
	for i := range settingsModels {
		settings[i] = *settingsModels[i].ToDomain()
	}
	return settings, nil
}

// FindByStore locates the connection and store serving a given carrier
// store ID and marketplace. Stores live inside the settings jsonb, so the
// match happens over the deserialized aggregates.
func (r *GormSettingsRepository) FindByStore(ctx context.Context, storeID, marketplace string) (*integration.CarrierSettings, *integration.CarrierStore, error) {
	connections, err := r.FindEnabled(ctx)
	if err != nil {
		return nil, nil, err
	}

	for i := range connections {
		store, ok := connections[i].FindStore(storeID)
		if !ok {
			continue
		}
		if marketplace != "" && store.Marketplace != marketplace {
			continue
		}
		return &connections[i], store, nil
	}
	return nil, nil, shared.ErrNotFound
}

// FindAll finds all carrier connections matching the filter
func (r *GormSettingsRepository) FindAll(ctx context.Context, filter shared.Filter) ([]integration.CarrierSettings, error) {
	var settingsModels []models.CarrierSettingsModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.CarrierSettingsModel{}), filter)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Find(&settingsModels).Error; err != nil {
		return nil, err
	}

	settings := make([]integration.CarrierSettings, len(settingsModels))
	for i := range settingsModels {
		settings[i] = *settingsModels[i].ToDomain()
	}
	return settings, nil
}

// Save creates or updates a carrier connection
func (r *GormSettingsRepository) Save(ctx context.Context, settings *integration.CarrierSettings) error {
	model := models.CarrierSettingsModelFromDomain(settings)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes a carrier connection
func (r *GormSettingsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CarrierSettingsModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts carrier connections matching the filter
func (r *GormSettingsRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CarrierSettingsModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ integration.SettingsRepository = (*GormSettingsRepository)(nil)
