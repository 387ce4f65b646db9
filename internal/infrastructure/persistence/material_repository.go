package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMaterialRepository implements catalog.MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

var materialListSpec = listSpec{
	sortFields:    MaterialSortFields,
	defaultOrder:  "sku ASC",
	searchColumns: []string{"sku", "name", "description"},
}

// Create inserts a material
func (r *GormMaterialRepository) Create(ctx context.Context, material *catalog.Material) error {
	return translateError(r.db.WithContext(ctx).Create(material).Error)
}

// Update saves a material guarded by its version
func (r *GormMaterialRepository) Update(ctx context.Context, material *catalog.Material) error {
	return updateVersioned(ctx, r.db, material)
}

// FindByID finds a material by ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var material catalog.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &material, nil
}

// FindByIDs returns the materials with the given IDs; missing IDs are skipped
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	if len(ids) == 0 {
		return []catalog.Material{}, nil
	}
	var materials []catalog.Material
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// ExistsBySKU checks whether a customer already uses a SKU
func (r *GormMaterialRepository) ExistsBySKU(ctx context.Context, customerID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	return existsExcluding(ctx, r.db, &catalog.Material{}, excludeID,
		"customer_id = ? AND sku = ?", customerID, strings.ToUpper(strings.TrimSpace(sku)))
}

// List returns materials matching the filter
func (r *GormMaterialRepository) List(ctx context.Context, filter shared.Filter) ([]catalog.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Material{})
	if id, ok := uuidFilter(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", id)
	}
	if id, ok := uuidFilter(filter, "project_id"); ok {
		query = query.Where("project_id = ?", id)
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}

	var materials []catalog.Material
	total, err := paginate(query, filter, materialListSpec, &materials)
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

var _ catalog.MaterialRepository = (*GormMaterialRepository)(nil)
