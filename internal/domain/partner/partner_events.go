package partner

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCustomer  = "Customer"
	AggregateTypeWarehouse = "Warehouse"
)

// Event type constants
const (
	EventTypeCustomerCreated      = "CustomerCreated"
	EventTypeWarehouseCreated     = "WarehouseCreated"
	EventTypeWarehouseDeactivated = "WarehouseDeactivated"
	EventTypeWarehouseDeleted     = "WarehouseDeleted"
)

// CustomerCreatedEvent is published when the customer wizard commits a new customer
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.ID),
		Code:            c.Code,
		Name:            c.Name,
	}
}

// WarehouseCreatedEvent is published when a new warehouse is created
type WarehouseCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewWarehouseCreatedEvent creates a new WarehouseCreatedEvent
func NewWarehouseCreatedEvent(w *Warehouse) *WarehouseCreatedEvent {
	return &WarehouseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseCreated, AggregateTypeWarehouse, w.ID, uuid.Nil),
		Code:            w.Code,
		Name:            w.Name,
	}
}

// WarehouseDeactivatedEvent is published when delete falls back to a soft delete
type WarehouseDeactivatedEvent struct {
	shared.BaseDomainEvent
	Code            string `json:"code"`
	DependentOrders int64  `json:"dependent_orders"`
}

// NewWarehouseDeactivatedEvent creates a new WarehouseDeactivatedEvent
func NewWarehouseDeactivatedEvent(w *Warehouse, dependentOrders int64) *WarehouseDeactivatedEvent {
	return &WarehouseDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseDeactivated, AggregateTypeWarehouse, w.ID, uuid.Nil),
		Code:            w.Code,
		DependentOrders: dependentOrders,
	}
}

// WarehouseDeletedEvent is published after a hard delete
type WarehouseDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewWarehouseDeletedEvent creates a new WarehouseDeletedEvent
func NewWarehouseDeletedEvent(w *Warehouse) *WarehouseDeletedEvent {
	return &WarehouseDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseDeleted, AggregateTypeWarehouse, w.ID, uuid.Nil),
		Code:            w.Code,
	}
}
