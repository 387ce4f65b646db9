package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence.
// List filters: "customer_id", "warehouse_id", "status_code", "from", "to" (time.Time on created_at).
type OrderRepository interface {
	// Create inserts the order and its items. A taken order number yields
	// an ALREADY_EXISTS domain error.
	Create(ctx context.Context, order *Order) error
	// Update saves the order row and replaces its items
	Update(ctx context.Context, order *Order) error
	// FindByID loads the order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// LastOrderNumber returns the highest order number starting with prefix, or ""
	LastOrderNumber(ctx context.Context, prefix string) (string, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
	// CountByWarehouse counts orders of any status referencing a warehouse
	CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)
}
