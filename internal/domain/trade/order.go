package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// CanTransition reports whether an order may move from one lifecycle status to another
func CanTransition(from, to shared.StatusCode) bool {
	switch from {
	case shared.StatusOrderNew:
		return to == shared.StatusOrderProcessing || to == shared.StatusOrderCancelled
	case shared.StatusOrderProcessing:
		return to == shared.StatusOrderShipped || to == shared.StatusOrderCancelled
	case shared.StatusOrderShipped:
		return to == shared.StatusOrderDelivered
	case shared.StatusOrderDelivered, shared.StatusOrderCancelled:
		return false // Terminal states
	}
	return false
}

// OrderHeader carries the routing fields of an order
type OrderHeader struct {
	ProjectID         uuid.UUID
	WarehouseID       uuid.UUID
	CarrierID         uuid.UUID
	CarrierServiceID  *uuid.UUID
	ShipToAccountID   uuid.UUID
	BillToAccountID   *uuid.UUID
	Reference         string
	RequestedShipDate *time.Time
	Notes             string
}

// OrderLine is a requested material and quantity
type OrderLine struct {
	MaterialID   uuid.UUID
	MaterialSKU  string
	MaterialName string
	Quantity     decimal.Decimal
	Notes        string
}

// Order is a shipment request from a customer's warehouse stock.
// It is the aggregate root for order-related operations.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string            `gorm:"type:varchar(30);not null;uniqueIndex" json:"order_number"`
	CustomerID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	ProjectID         uuid.UUID         `gorm:"type:uuid;not null" json:"project_id"`
	WarehouseID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	CarrierID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"carrier_id"`
	CarrierServiceID  *uuid.UUID        `gorm:"type:uuid" json:"carrier_service_id,omitempty"`
	ShipToAccountID   uuid.UUID         `gorm:"type:uuid;not null" json:"ship_to_account_id"`
	BillToAccountID   *uuid.UUID        `gorm:"type:uuid" json:"bill_to_account_id,omitempty"`
	Reference         string            `gorm:"type:varchar(100)" json:"reference"`
	RequestedShipDate *time.Time        `gorm:"type:date" json:"requested_ship_date,omitempty"`
	Notes             string            `gorm:"type:text" json:"notes"`
	TrackingNumber    string            `gorm:"type:varchar(100)" json:"tracking_number"`
	StatusCode        shared.StatusCode `gorm:"not null;default:10;index" json:"status_code"`
	ShippedAt         *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason      string            `gorm:"type:varchar(500)" json:"cancel_reason"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID" json:"items"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line of an order
type OrderItem struct {
	shared.BaseEntity
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	MaterialSKU  string          `gorm:"column:material_sku;type:varchar(100);not null" json:"material_sku"`
	MaterialName string          `gorm:"type:varchar(200);not null" json:"material_name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes        string          `gorm:"type:varchar(500)" json:"notes"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder creates an order in New status
func NewOrder(orderNumber string, customerID uuid.UUID, header OrderHeader, lines []OrderLine) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		StatusCode:        shared.StatusOrderNew,
	}
	order.applyHeader(header)
	if err := order.setItems(lines); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

// AssignOrderNumber replaces the order number of an unsaved order, used when
// an insert lost the race for a number.
func (o *Order) AssignOrderNumber(orderNumber string) error {
	if err := validateOrderNumber(orderNumber); err != nil {
		return err
	}
	o.OrderNumber = orderNumber
	for _, ev := range o.GetDomainEvents() {
		if created, ok := ev.(*OrderCreatedEvent); ok {
			created.OrderNumber = orderNumber
		}
	}
	return nil
}

// Update replaces header and items. Only New orders are editable.
func (o *Order) Update(header OrderHeader, lines []OrderLine) error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify order in %s status", o.StatusCode))
	}
	if err := validateHeader(header); err != nil {
		return err
	}
	if err := o.setItems(lines); err != nil {
		return err
	}
	o.applyHeader(header)
	o.ModifiedAt = time.Now()
	return nil
}

// TransitionTo moves the order along its lifecycle
func (o *Order) TransitionTo(target shared.StatusCode, trackingNumber string) error {
	if !target.IsOrderStatus() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%d is not an order status", target))
	}
	if !CanTransition(o.StatusCode, target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move order from %s to %s", o.StatusCode, target))
	}

	now := time.Now()
	from := o.StatusCode
	switch target {
	case shared.StatusOrderShipped:
		o.ShippedAt = &now
		if trackingNumber = strings.TrimSpace(trackingNumber); trackingNumber != "" {
			o.TrackingNumber = trackingNumber
		}
	case shared.StatusOrderDelivered:
		o.DeliveredAt = &now
	case shared.StatusOrderCancelled:
		o.CancelledAt = &now
	}
	o.StatusCode = target
	o.ModifiedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Cancel cancels a New or Processing order
func (o *Order) Cancel(reason string) error {
	if err := o.TransitionTo(shared.StatusOrderCancelled, ""); err != nil {
		return err
	}
	o.CancelReason = strings.TrimSpace(reason)
	return nil
}

// CanModify reports whether header and items may still change
func (o *Order) CanModify() bool {
	return o.StatusCode == shared.StatusOrderNew
}

// IsTerminal reports whether the order reached a final status
func (o *Order) IsTerminal() bool {
	return o.StatusCode == shared.StatusOrderDelivered || o.StatusCode == shared.StatusOrderCancelled
}

// TotalQuantity sums the item quantities
func (o *Order) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// MaterialIDs returns the distinct materials referenced by the order
func (o *Order) MaterialIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.MaterialID)
	}
	return ids
}

func (o *Order) applyHeader(h OrderHeader) {
	o.ProjectID = h.ProjectID
	o.WarehouseID = h.WarehouseID
	o.CarrierID = h.CarrierID
	o.CarrierServiceID = h.CarrierServiceID
	o.ShipToAccountID = h.ShipToAccountID
	o.BillToAccountID = h.BillToAccountID
	o.Reference = strings.TrimSpace(h.Reference)
	o.RequestedShipDate = h.RequestedShipDate
	o.Notes = strings.TrimSpace(h.Notes)
}

func (o *Order) setItems(lines []OrderLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("NO_ITEMS", "An order needs at least one item")
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.MaterialID == uuid.Nil {
			return shared.NewCatalogError("INVALID_MATERIAL")
		}
		if _, dup := seen[line.MaterialID]; dup {
			return shared.NewDomainError("DUPLICATE_MATERIAL", "A material can appear only once per order")
		}
		seen[line.MaterialID] = struct{}{}
		if !line.Quantity.IsPositive() {
			return shared.NewCatalogError("INVALID_QUANTITY")
		}
		items = append(items, OrderItem{
			BaseEntity:   shared.NewBaseEntity(),
			OrderID:      o.ID,
			MaterialID:   line.MaterialID,
			MaterialSKU:  line.MaterialSKU,
			MaterialName: line.MaterialName,
			Quantity:     line.Quantity,
			Notes:        strings.TrimSpace(line.Notes),
		})
	}
	o.Items = items
	return nil
}

func validateOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 30 {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 30 characters")
	}
	return nil
}

func validateHeader(h OrderHeader) error {
	switch {
	case h.ProjectID == uuid.Nil:
		return shared.NewDomainError("INVALID_PROJECT", "Project is required")
	case h.WarehouseID == uuid.Nil:
		return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is required")
	case h.CarrierID == uuid.Nil:
		return shared.NewDomainError("INVALID_CARRIER", "Carrier is required")
	case h.ShipToAccountID == uuid.Nil:
		return shared.NewDomainError("INVALID_ACCOUNT", "Ship-to account is required")
	case len(h.Reference) > 100:
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}
	return nil
}
