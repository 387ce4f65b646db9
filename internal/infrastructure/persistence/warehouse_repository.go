package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements partner.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

var warehouseListSpec = listSpec{
	sortFields:    WarehouseSortFields,
	defaultOrder:  "name ASC",
	searchColumns: []string{"code", "name", "city"},
}

// Create inserts a warehouse
func (r *GormWarehouseRepository) Create(ctx context.Context, warehouse *partner.Warehouse) error {
	return translateError(r.db.WithContext(ctx).Create(warehouse).Error)
}

// Update saves a warehouse guarded by its version
func (r *GormWarehouseRepository) Update(ctx context.Context, warehouse *partner.Warehouse) error {
	return updateVersioned(ctx, r.db, warehouse)
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var warehouse partner.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &warehouse, nil
}

// ExistsByCode checks whether a warehouse code is taken
func (r *GormWarehouseRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return existsExcluding(ctx, r.db, &partner.Warehouse{}, excludeID,
		"code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// List returns warehouses matching the filter. The "customer_id" filter keeps
// only warehouses assigned to that customer.
func (r *GormWarehouseRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Warehouse, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Warehouse{})
	if customerID, ok := uuidFilter(filter, "customer_id"); ok {
		query = query.Where("id IN (?)",
			r.db.Model(&partner.CustomerWarehouse{}).Select("warehouse_id").Where("customer_id = ?", customerID))
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}

	var warehouses []partner.Warehouse
	total, err := paginate(query, filter, warehouseListSpec, &warehouses)
	if err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

// Delete removes the warehouse row
func (r *GormWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Warehouse{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceAssignments sets the customers allowed to use a warehouse. The
// delete and insert share one transaction so a failed insert keeps the old set.
func (r *GormWarehouseRepository) ReplaceAssignments(ctx context.Context, warehouseID uuid.UUID, customerIDs []uuid.UUID, actor *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("warehouse_id = ?", warehouseID).Delete(&partner.CustomerWarehouse{}).Error; err != nil {
			return translateError(err)
		}
		if len(customerIDs) == 0 {
			return nil
		}

		now := time.Now()
		seen := make(map[uuid.UUID]bool, len(customerIDs))
		rows := make([]partner.CustomerWarehouse, 0, len(customerIDs))
		for _, id := range customerIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, partner.CustomerWarehouse{
				CustomerID:  id,
				WarehouseID: warehouseID,
				CreatedBy:   actor,
				CreatedAt:   now,
			})
		}
		return translateError(tx.Create(&rows).Error)
	})
}

// RemoveAssignments deletes every customer_warehouses row of a warehouse
func (r *GormWarehouseRepository) RemoveAssignments(ctx context.Context, warehouseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Delete(&partner.CustomerWarehouse{}).Error
}

// AssignedCustomerIDs returns the customers linked to a warehouse
func (r *GormWarehouseRepository) AssignedCustomerIDs(ctx context.Context, warehouseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&partner.CustomerWarehouse{}).
		Where("warehouse_id = ?", warehouseID).
		Order("created_at ASC").
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IsAssigned reports whether a customer may use a warehouse
func (r *GormWarehouseRepository) IsAssigned(ctx context.Context, customerID, warehouseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&partner.CustomerWarehouse{}).
		Where("customer_id = ? AND warehouse_id = ?", customerID, warehouseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)
