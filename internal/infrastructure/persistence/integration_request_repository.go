package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/infrastructure/persistence/models"
)

// GormIntegrationRequestRepository implements IntegrationRequestRepository using GORM
type GormIntegrationRequestRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRequestRepository creates a new GormIntegrationRequestRepository
func NewGormIntegrationRequestRepository(db *gorm.DB) *GormIntegrationRequestRepository {
	return &GormIntegrationRequestRepository{db: db}
}

// Save creates or updates an audit record
func (r *GormIntegrationRequestRepository) Save(ctx context.Context, request *integration.IntegrationRequest) error {
	model := models.IntegrationRequestModelFromDomain(request)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// List returns a page of audit records, newest first
func (r *GormIntegrationRequestRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[integration.IntegrationRequest], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	base := r.db.WithContext(ctx).Model(&models.IntegrationRequestModel{})
	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if service, ok := filter.Filters["service"]; ok {
		base = base.Where("service = ?", service)
	}
	if filter.Search != "" {
		base = base.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[integration.IntegrationRequest]{}, err
	}

	var requestModels []models.IntegrationRequestModel
	if err := applyFilter(base, filter).Find(&requestModels).Error; err != nil {
		return shared.Paginated[integration.IntegrationRequest]{}, err
	}

	requests := make([]integration.IntegrationRequest, len(requestModels))
	for i := range requestModels {
		requests[i] = *requestModels[i].ToDomain()
	}
	return shared.NewPaginated(requests, total, filter.Page, filter.PageSize), nil
}

// Ensure GormIntegrationRequestRepository implements IntegrationRequestRepository
var _ integration.IntegrationRequestRepository = (*GormIntegrationRequestRepository)(nil)
