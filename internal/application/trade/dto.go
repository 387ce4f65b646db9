package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// requestedDateLayout is the wire format of requested_ship_date
const requestedDateLayout = "2006-01-02"

// OrderItemInput is one requested line of an order
type OrderItemInput struct {
	MaterialID uuid.UUID       `json:"material_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// OrderFields are the editable fields shared by create and update
type OrderFields struct {
	ProjectID         *uuid.UUID       `json:"project_id"`
	WarehouseID       uuid.UUID        `json:"warehouse_id" binding:"required"`
	CarrierID         uuid.UUID        `json:"carrier_id" binding:"required"`
	CarrierServiceID  *uuid.UUID       `json:"carrier_service_id"`
	ShipToAccountID   uuid.UUID        `json:"ship_to_account_id" binding:"required"`
	BillToAccountID   *uuid.UUID       `json:"bill_to_account_id"`
	Reference         string           `json:"reference" binding:"max=100"`
	RequestedShipDate string           `json:"requested_ship_date" binding:"omitempty,datetime=2006-01-02"`
	Notes             string           `json:"notes"`
	Items             []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderRequest represents a request to create an order.
// CustomerID is mandatory for admins; clients always order for their own customer.
type CreateOrderRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	OrderFields
}

// UpdateOrderRequest represents a request to update a New order
type UpdateOrderRequest struct {
	OrderFields
}

// ChangeStatusRequest moves an order along its lifecycle
type ChangeStatusRequest struct {
	StatusCode     int    `json:"status_code" binding:"required,oneof=10 11 12 13 14"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

// CancelOrderRequest carries an optional cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderListFilter narrows an order listing
type OrderListFilter struct {
	CustomerID  *uuid.UUID
	WarehouseID *uuid.UUID
	StatusCode  *int
	From        *time.Time
	To          *time.Time
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialSKU  string          `json:"material_sku"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	ProjectID         uuid.UUID           `json:"project_id"`
	WarehouseID       uuid.UUID           `json:"warehouse_id"`
	CarrierID         uuid.UUID           `json:"carrier_id"`
	CarrierServiceID  *uuid.UUID          `json:"carrier_service_id,omitempty"`
	ShipToAccountID   uuid.UUID           `json:"ship_to_account_id"`
	BillToAccountID   *uuid.UUID          `json:"bill_to_account_id,omitempty"`
	Reference         string              `json:"reference"`
	RequestedShipDate string              `json:"requested_ship_date,omitempty"`
	Notes             string              `json:"notes"`
	StatusCode        int                 `json:"status_code"`
	Status            string              `json:"status"`
	TrackingNumber    string              `json:"tracking_number,omitempty"`
	TrackingURL       string              `json:"tracking_url,omitempty"`
	CancelReason      string              `json:"cancel_reason,omitempty"`
	TotalQuantity     decimal.Decimal     `json:"total_quantity"`
	Items             []OrderItemResponse `json:"items"`
	ShippedAt         *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	ModifiedAt        time.Time           `json:"modified_at"`
	Version           int                 `json:"version"`
}

// PackingSlipResult is either the PDF itself or a presigned link to the archived copy
type PackingSlipResult struct {
	FileName  string     `json:"file_name"`
	PDF       []byte     `json:"-"`
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			MaterialSKU:  item.MaterialSKU,
			MaterialName: item.MaterialName,
			Quantity:     item.Quantity,
			Notes:        item.Notes,
		}
	}
	resp := OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		ProjectID:        o.ProjectID,
		WarehouseID:      o.WarehouseID,
		CarrierID:        o.CarrierID,
		CarrierServiceID: o.CarrierServiceID,
		ShipToAccountID:  o.ShipToAccountID,
		BillToAccountID:  o.BillToAccountID,
		Reference:        o.Reference,
		Notes:            o.Notes,
		StatusCode:       int(o.StatusCode),
		Status:           o.StatusCode.String(),
		TrackingNumber:   o.TrackingNumber,
		CancelReason:     o.CancelReason,
		TotalQuantity:    o.TotalQuantity(),
		Items:            items,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		ModifiedAt:       o.ModifiedAt,
		Version:          o.Version,
	}
	if o.RequestedShipDate != nil {
		resp.RequestedShipDate = o.RequestedShipDate.Format(requestedDateLayout)
	}
	return resp
}

func parseRequestedDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(requestedDateLayout, s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", "requested_ship_date must be YYYY-MM-DD")
	}
	return &t, nil
}
