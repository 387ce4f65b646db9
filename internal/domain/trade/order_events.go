package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Event type constants for Order
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderCreatedEvent is published when an order is placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	CarrierID     uuid.UUID       `json:"carrier_id"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.CustomerID),
		OrderNumber:     o.OrderNumber,
		WarehouseID:     o.WarehouseID,
		CarrierID:       o.CarrierID,
		ItemCount:       len(o.Items),
		TotalQuantity:   o.TotalQuantity(),
	}
}

// OrderStatusChangedEvent is published on every lifecycle transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string            `json:"order_number"`
	FromStatus     shared.StatusCode `json:"from_status"`
	ToStatus       shared.StatusCode `json:"to_status"`
	TrackingNumber string            `json:"tracking_number,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from shared.StatusCode) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.CustomerID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		ToStatus:        o.StatusCode,
		TrackingNumber:  o.TrackingNumber,
	}
}
