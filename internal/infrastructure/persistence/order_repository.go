package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var orderListSpec = listSpec{
	sortFields:    OrderSortFields,
	defaultOrder:  "created_at DESC",
	searchColumns: []string{"order_number", "reference", "tracking_number"},
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, material_sku ASC")
	})
}

// Create inserts the order and its items in one transaction
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translateError(err)
		}
		return createItems(tx, order)
	})
}

// Update saves the order row guarded by its version and replaces its items
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(ctx, tx, order); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&trade.OrderItem{}).Error; err != nil {
			return err
		}
		return createItems(tx, order)
	})
}

func createItems(tx *gorm.DB, order *trade.Order) error {
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return translateError(tx.Create(&order.Items).Error)
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).Scopes(preloadItems).First(&order, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// List returns orders with their items
func (r *GormOrderRepository) List(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Order{})
	if id, ok := uuidFilter(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", id)
	}
	if id, ok := uuidFilter(filter, "warehouse_id"); ok {
		query = query.Where("warehouse_id = ?", id)
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}
	if from, ok := filter.Filters["from"].(time.Time); ok {
		query = query.Where("created_at >= ?", from)
	}
	if to, ok := filter.Filters["to"].(time.Time); ok {
		query = query.Where("created_at < ?", to)
	}

	var orders []trade.Order
	total, err := paginate(query, filter, orderListSpec, &orders, preloadItems)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// LastOrderNumber returns the highest order number with the given prefix.
// Longer numbers sort first so a sequence past 9999 still wins.
func (r *GormOrderRepository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	var order trade.Order
	err := r.db.WithContext(ctx).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return order.OrderNumber, nil
}

// ExistsByOrderNumber checks whether an order number is taken
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	return existsExcluding(ctx, r.db, &trade.Order{}, nil, "order_number = ?", orderNumber)
}

// CountByWarehouse counts orders of any status referencing a warehouse
func (r *GormOrderRepository) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("warehouse_id = ?", warehouseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
