package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCarrierRepository implements partner.CarrierRepository using GORM
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new GormCarrierRepository
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

var carrierListSpec = listSpec{
	sortFields:    CarrierSortFields,
	defaultOrder:  "name ASC",
	searchColumns: []string{"code", "name"},
}

// Create inserts the carrier row and any services attached to it
func (r *GormCarrierRepository) Create(ctx context.Context, carrier *partner.Carrier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(carrier).Error; err != nil {
			return translateError(err)
		}
		for i := range carrier.Services {
			carrier.Services[i].CarrierID = carrier.ID
			if err := tx.Create(&carrier.Services[i]).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// Update saves the carrier row guarded by its version
func (r *GormCarrierRepository) Update(ctx context.Context, carrier *partner.Carrier) error {
	return updateVersioned(ctx, r.db, carrier)
}

// FindByID loads a carrier with all of its services
func (r *GormCarrierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Carrier, error) {
	var carrier partner.Carrier
	if err := r.db.WithContext(ctx).
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		First(&carrier, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &carrier, nil
}

// ExistsByCode checks whether a carrier code is taken
func (r *GormCarrierRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return existsExcluding(ctx, r.db, &partner.Carrier{}, excludeID,
		"code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// List returns carriers with their services. When filtered to active carriers
// only active services are preloaded.
func (r *GormCarrierRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Carrier, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Carrier{})
	status, hasStatus := statusFilter(filter)
	if hasStatus {
		query = query.Where("status_code = ?", status)
	}
	preloadServices := func(db *gorm.DB) *gorm.DB {
		return db.Preload("Services", func(db *gorm.DB) *gorm.DB {
			if hasStatus && status == shared.StatusActive {
				db = db.Where("status_code = ?", shared.StatusActive)
			}
			return db.Order("name ASC")
		})
	}

	var carriers []partner.Carrier
	total, err := paginate(query, filter, carrierListSpec, &carriers, preloadServices)
	if err != nil {
		return nil, 0, err
	}
	return carriers, total, nil
}

// CreateService inserts a carrier service
func (r *GormCarrierRepository) CreateService(ctx context.Context, service *partner.CarrierService) error {
	return translateError(r.db.WithContext(ctx).Create(service).Error)
}

// UpdateService saves every column of a carrier service
func (r *GormCarrierRepository) UpdateService(ctx context.Context, service *partner.CarrierService) error {
	result := r.db.WithContext(ctx).
		Model(service).
		Select("*").
		Omit("id", "carrier_id", "created_at", "created_by").
		Updates(service)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindServiceByID finds a carrier service by ID
func (r *GormCarrierRepository) FindServiceByID(ctx context.Context, id uuid.UUID) (*partner.CarrierService, error) {
	var service partner.CarrierService
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &service, nil
}

var _ partner.CarrierRepository = (*GormCarrierRepository)(nil)
