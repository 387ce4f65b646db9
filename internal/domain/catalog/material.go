package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

var skuRegex = regexp.MustCompile(`^[A-Za-z0-9_\-./]+$`)

// DefaultUnitOfMeasure is used when a material is created without one
const DefaultUnitOfMeasure = "EA"

// Material is an inventory line item owned by a customer's project
type Material struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_material_customer_sku,priority:1" json:"customer_id"`
	ProjectID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	SKU           string            `gorm:"column:sku;type:varchar(100);not null;uniqueIndex:idx_material_customer_sku,priority:2" json:"sku"`
	Name          string            `gorm:"type:varchar(200);not null" json:"name"`
	Description   string            `gorm:"type:text" json:"description"`
	UnitOfMeasure string            `gorm:"type:varchar(20);not null" json:"unit_of_measure"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	StatusCode    shared.StatusCode `gorm:"not null;default:1;index" json:"status_code"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates an active material with zero available quantity
func NewMaterial(customerID, projectID uuid.UUID, sku, name string) (*Material, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Material must belong to a customer")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Material must belong to a project")
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		ProjectID:         projectID,
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		Name:              strings.TrimSpace(name),
		UnitOfMeasure:     DefaultUnitOfMeasure,
		Quantity:          decimal.Zero,
		StatusCode:        shared.StatusActive,
	}, nil
}

// Update replaces the descriptive fields of the material
func (m *Material) Update(sku, name, description, unitOfMeasure string) error {
	if err := validateSKU(sku); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	uom := strings.ToUpper(strings.TrimSpace(unitOfMeasure))
	if uom == "" {
		uom = DefaultUnitOfMeasure
	}
	if len(uom) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot exceed 20 characters")
	}

	m.SKU = strings.ToUpper(strings.TrimSpace(sku))
	m.Name = strings.TrimSpace(name)
	m.Description = strings.TrimSpace(description)
	m.UnitOfMeasure = uom
	m.ModifiedAt = time.Now()
	return nil
}

// MoveToProject reassigns the material to another project of the same customer
func (m *Material) MoveToProject(projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROJECT", "Material must belong to a project")
	}
	m.ProjectID = projectID
	m.ModifiedAt = time.Now()
	return nil
}

// SetQuantity sets the available quantity
func (m *Material) SetQuantity(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Available quantity cannot be negative")
	}
	m.Quantity = qty
	m.ModifiedAt = time.Now()
	return nil
}

// Activate re-enables the material
func (m *Material) Activate() {
	m.StatusCode = shared.StatusActive
	m.ModifiedAt = time.Now()
}

// Deactivate soft-deletes the material; it can no longer be ordered
func (m *Material) Deactivate() {
	m.StatusCode = shared.StatusInactive
	m.ModifiedAt = time.Now()
}

// IsActive reports whether the material can be ordered
func (m *Material) IsActive() bool {
	return m.StatusCode == shared.StatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 100 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}
	if !skuRegex.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers and - _ . /")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}
	return nil
}
