package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Customer is an organization that owns projects, users, materials and orders
type Customer struct {
	shared.BaseAggregateRoot
	Code       string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name       string            `gorm:"type:varchar(200);not null" json:"name"`
	Email      string            `gorm:"type:varchar(200)" json:"email"`
	Phone      string            `gorm:"type:varchar(50)" json:"phone"`
	Address    Address           `gorm:"embedded" json:"address"`
	StatusCode shared.StatusCode `gorm:"not null;default:1;index" json:"status_code"`
	Projects   []Project         `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates an active customer
func NewCustomer(code, name string) (*Customer, error) {
	if err := validateCode("Customer", code); err != nil {
		return nil, err
	}
	if err := validateName("Customer", name); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalizeCode(code),
		Name:              strings.TrimSpace(name),
		StatusCode:        shared.StatusActive,
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update replaces the descriptive fields of the customer
func (c *Customer) Update(name, email, phone string, address Address) error {
	if err := validateName("Customer", name); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}
	address = address.Trimmed()
	if err := address.Validate(); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.Email = email
	c.Phone = phone
	c.Address = address
	c.ModifiedAt = time.Now()
	return nil
}

// UpdateCode changes the customer code
func (c *Customer) UpdateCode(code string) error {
	if err := validateCode("Customer", code); err != nil {
		return err
	}
	c.Code = normalizeCode(code)
	c.ModifiedAt = time.Now()
	return nil
}

// SetStatus switches between Active and Inactive
func (c *Customer) SetStatus(code shared.StatusCode) error {
	if !code.IsRecordStatus() {
		return shared.NewDomainError("INVALID_STATUS", "Customer status must be Active or Inactive")
	}
	if c.StatusCode == code {
		return nil
	}
	c.StatusCode = code
	c.ModifiedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the customer
func (c *Customer) Deactivate() {
	_ = c.SetStatus(shared.StatusInactive)
}

// IsActive reports whether the customer is active
func (c *Customer) IsActive() bool {
	return c.StatusCode == shared.StatusActive
}

// DefaultProject returns the default project among the loaded projects
func (c *Customer) DefaultProject() *Project {
	for i := range c.Projects {
		if c.Projects[i].IsDefault && c.Projects[i].IsActive() {
			return &c.Projects[i]
		}
	}
	return nil
}

// Project groups materials under a customer
type Project struct {
	shared.BaseEntity
	CustomerID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name        string            `gorm:"type:varchar(200);not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	IsDefault   bool              `gorm:"not null;default:false" json:"is_default"`
	StatusCode  shared.StatusCode `gorm:"not null;default:1" json:"status_code"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates an active project for a customer
func NewProject(customerID uuid.UUID, name, description string, isDefault bool) (*Project, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Project must belong to a customer")
	}
	if err := validateName("Project", name); err != nil {
		return nil, err
	}
	return &Project{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		IsDefault:   isDefault,
		StatusCode:  shared.StatusActive,
	}, nil
}

// Update replaces the descriptive fields of the project
func (p *Project) Update(name, description string, isDefault bool) error {
	if err := validateName("Project", name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = strings.TrimSpace(description)
	p.IsDefault = isDefault
	p.ModifiedAt = time.Now()
	return nil
}

// Activate re-enables the project
func (p *Project) Activate() {
	p.StatusCode = shared.StatusActive
	p.ModifiedAt = time.Now()
}

// Deactivate soft-deletes the project. An inactive project is never the default.
func (p *Project) Deactivate() {
	p.StatusCode = shared.StatusInactive
	p.IsDefault = false
	p.ModifiedAt = time.Now()
}

// IsActive reports whether the project is active
func (p *Project) IsActive() bool {
	return p.StatusCode == shared.StatusActive
}

// NormalizeDefaultProject enforces the one-default-project rule over the active
// projects of a customer. When no active project is flagged, the first one becomes
// the default. Two or more flagged projects are rejected.
func NormalizeDefaultProject(projects []*Project) error {
	var active []*Project
	for _, p := range projects {
		if p.IsActive() {
			active = append(active, p)
		} else {
			p.IsDefault = false
		}
	}
	if len(active) == 0 {
		return shared.NewDomainError("DEFAULT_PROJECT", "A customer must have at least one active project")
	}

	defaults := 0
	for _, p := range active {
		if p.IsDefault {
			defaults++
		}
	}
	switch {
	case defaults > 1:
		return shared.NewDomainError("DEFAULT_PROJECT", "Only one project can be marked as default")
	case defaults == 0:
		active[0].IsDefault = true
	}

	names := make(map[string]struct{}, len(active))
	for _, p := range active {
		key := strings.ToLower(p.Name)
		if _, dup := names[key]; dup {
			return shared.NewDomainError("INVALID_NAME", "Project names must be unique within a customer")
		}
		names[key] = struct{}{}
	}
	return nil
}
