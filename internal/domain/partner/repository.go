package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence.
// List filters: "id" (uuid.UUID, client scope), "status_code".
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	// FindByID loads the customer with its projects
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Project, error)
}

// AccountRepository defines the interface for account persistence.
// List filters: "type", "status_code".
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Account, int64, error)
}

// WarehouseRepository defines the interface for warehouse persistence.
// List filters: "customer_id" (assigned warehouses only), "status_code".
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *Warehouse) error
	Update(ctx context.Context, warehouse *Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter shared.Filter) ([]Warehouse, int64, error)

	// Delete removes the warehouse row
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceAssignments sets the customers allowed to use a warehouse
	ReplaceAssignments(ctx context.Context, warehouseID uuid.UUID, customerIDs []uuid.UUID, actor *uuid.UUID) error
	// RemoveAssignments deletes every customer_warehouses row of a warehouse
	RemoveAssignments(ctx context.Context, warehouseID uuid.UUID) error
	// AssignedCustomerIDs returns the customers linked to a warehouse
	AssignedCustomerIDs(ctx context.Context, warehouseID uuid.UUID) ([]uuid.UUID, error)
	// IsAssigned reports whether a customer may use a warehouse
	IsAssigned(ctx context.Context, customerID, warehouseID uuid.UUID) (bool, error)
}

// CarrierRepository defines the interface for carrier persistence.
// List filters: "status_code". Active listings preload only active services.
type CarrierRepository interface {
	Create(ctx context.Context, carrier *Carrier) error
	Update(ctx context.Context, carrier *Carrier) error
	// FindByID loads the carrier with all its services
	FindByID(ctx context.Context, id uuid.UUID) (*Carrier, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter shared.Filter) ([]Carrier, int64, error)

	CreateService(ctx context.Context, service *CarrierService) error
	UpdateService(ctx context.Context, service *CarrierService) error
	FindServiceByID(ctx context.Context, id uuid.UUID) (*CarrierService, error)
}
