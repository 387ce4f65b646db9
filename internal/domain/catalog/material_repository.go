package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// MaterialRepository defines the interface for material persistence.
// List filters: "customer_id", "project_id", "status_code".
type MaterialRepository interface {
	Create(ctx context.Context, material *Material) error
	Update(ctx context.Context, material *Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	// FindByIDs returns the materials with the given IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Material, error)
	ExistsBySKU(ctx context.Context, customerID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter shared.Filter) ([]Material, int64, error)
}
