package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Warehouse is a physical site orders ship from.
// It is the aggregate root for warehouse-related operations.
type Warehouse struct {
	shared.BaseAggregateRoot
	Code        string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name        string            `gorm:"type:varchar(200);not null" json:"name"`
	ContactName string            `gorm:"type:varchar(100)" json:"contact_name"`
	Phone       string            `gorm:"type:varchar(50)" json:"phone"`
	Email       string            `gorm:"type:varchar(200)" json:"email"`
	Address     Address           `gorm:"embedded" json:"address"`
	StatusCode  shared.StatusCode `gorm:"not null;default:1;index" json:"status_code"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	if err := validateCode("Warehouse", code); err != nil {
		return nil, err
	}
	if err := validateName("Warehouse", name); err != nil {
		return nil, err
	}

	w := &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalizeCode(code),
		Name:              strings.TrimSpace(name),
		StatusCode:        shared.StatusActive,
	}
	w.AddDomainEvent(NewWarehouseCreatedEvent(w))
	return w, nil
}

// Update replaces the warehouse's name
func (w *Warehouse) Update(name string) error {
	if err := validateName("Warehouse", name); err != nil {
		return err
	}
	w.Name = strings.TrimSpace(name)
	w.ModifiedAt = time.Now()
	return nil
}

// UpdateCode updates the warehouse's code
func (w *Warehouse) UpdateCode(code string) error {
	if err := validateCode("Warehouse", code); err != nil {
		return err
	}
	w.Code = normalizeCode(code)
	w.ModifiedAt = time.Now()
	return nil
}

// SetContact sets the warehouse's contact information
func (w *Warehouse) SetContact(contactName, phone, email string) error {
	contactName = strings.TrimSpace(contactName)
	if len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	w.ContactName = contactName
	w.Phone = phone
	w.Email = email
	w.ModifiedAt = time.Now()
	return nil
}

// SetAddress sets the warehouse's address
func (w *Warehouse) SetAddress(address Address) error {
	address = address.Trimmed()
	if err := address.Validate(); err != nil {
		return err
	}
	w.Address = address
	w.ModifiedAt = time.Now()
	return nil
}

// Activate re-enables an inactive warehouse
func (w *Warehouse) Activate() {
	if w.StatusCode == shared.StatusActive {
		return
	}
	w.StatusCode = shared.StatusActive
	w.ModifiedAt = time.Now()
}

// Deactivate soft-deletes the warehouse. Orders keep pointing at it.
func (w *Warehouse) Deactivate(dependentOrders int64) {
	if w.StatusCode == shared.StatusInactive {
		return
	}
	w.StatusCode = shared.StatusInactive
	w.ModifiedAt = time.Now()
	w.AddDomainEvent(NewWarehouseDeactivatedEvent(w, dependentOrders))
}

// MarkDeleted records that the warehouse row is about to be removed
func (w *Warehouse) MarkDeleted() {
	w.AddDomainEvent(NewWarehouseDeletedEvent(w))
}

// IsActive reports whether the warehouse accepts new orders
func (w *Warehouse) IsActive() bool {
	return w.StatusCode == shared.StatusActive
}

// CustomerWarehouse links a customer to a warehouse it may ship from
type CustomerWarehouse struct {
	CustomerID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"customer_id"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;primaryKey;index" json:"warehouse_id"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (CustomerWarehouse) TableName() string {
	return "customer_warehouses"
}

// DeleteMode reports how a warehouse delete was carried out
type DeleteMode string

const (
	DeleteModeSoft DeleteMode = "soft"
	DeleteModeHard DeleteMode = "hard"
)
