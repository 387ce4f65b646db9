package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/shared"
)

// CreateMaterialRequest represents a request to create a material.
// A nil ProjectID files the material under the customer's default project.
type CreateMaterialRequest struct {
	CustomerID    uuid.UUID        `json:"customer_id" binding:"required"`
	ProjectID     *uuid.UUID       `json:"project_id"`
	SKU           string           `json:"sku" binding:"required,min=1,max=100"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description"`
	UnitOfMeasure string           `json:"unit_of_measure" binding:"max=20"`
	Quantity      *decimal.Decimal `json:"quantity"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	ProjectID     *uuid.UUID       `json:"project_id"`
	SKU           string           `json:"sku" binding:"required,min=1,max=100"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description"`
	UnitOfMeasure string           `json:"unit_of_measure" binding:"max=20"`
	Quantity      *decimal.Decimal `json:"quantity"`
	StatusCode    *int             `json:"status_code" binding:"omitempty,oneof=1 2"`
}

// MaterialListFilter narrows a material listing
type MaterialListFilter struct {
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
	StatusCode *int
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Quantity      decimal.Decimal `json:"quantity"`
	StatusCode    int             `json:"status_code"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ModifiedAt    time.Time       `json:"modified_at"`
	Version       int             `json:"version"`
}

// ToMaterialResponse converts a domain material to a response
func ToMaterialResponse(m *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		ProjectID:     m.ProjectID,
		SKU:           m.SKU,
		Name:          m.Name,
		Description:   m.Description,
		UnitOfMeasure: m.UnitOfMeasure,
		Quantity:      m.Quantity,
		StatusCode:    int(m.StatusCode),
		Status:        m.StatusCode.String(),
		CreatedAt:     m.CreatedAt,
		ModifiedAt:    m.ModifiedAt,
		Version:       m.Version,
	}
}

// StatusResponse is one row of the status lookup
type StatusResponse struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Scope string `json:"scope"`
}

// ToStatusResponse converts a status row to a response
func ToStatusResponse(s shared.Status) StatusResponse {
	return StatusResponse{Code: int(s.Code), Name: s.Name, Scope: s.Scope}
}
