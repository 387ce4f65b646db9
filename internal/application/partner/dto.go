package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
)

// =============================================================================
// Shared DTOs
// =============================================================================

// AddressInput is the postal address accepted by customer, account and warehouse requests
type AddressInput struct {
	AddressLine1 string `json:"address_line1" binding:"max=200"`
	AddressLine2 string `json:"address_line2" binding:"max=200"`
	City         string `json:"city" binding:"max=100"`
	State        string `json:"state" binding:"max=100"`
	PostalCode   string `json:"postal_code" binding:"max=20"`
	Country      string `json:"country" binding:"max=100"`
}

func (a AddressInput) toDomain() partner.Address {
	return partner.Address{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

// =============================================================================
// Customer wizard DTOs
// =============================================================================

// CustomerWizardInput creates or updates a customer with its projects and users in one go
type CustomerWizardInput struct {
	Customer CustomerInput  `json:"customer" binding:"required"`
	Projects []ProjectInput `json:"projects" binding:"dive"`
	Users    []UserInput    `json:"users" binding:"dive"`
}

// CustomerInput is the customer section of the wizard
type CustomerInput struct {
	Code       string       `json:"code" binding:"required,min=1,max=50,code_format"`
	Name       string       `json:"name" binding:"required,min=1,max=200"`
	Email      string       `json:"email" binding:"omitempty,email,max=200"`
	Phone      string       `json:"phone" binding:"max=50"`
	Address    AddressInput `json:"address"`
	StatusCode *int         `json:"status_code" binding:"omitempty,oneof=1 2"`
}

// ProjectInput creates a project, or updates the one named by ID
type ProjectInput struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"is_default"`
}

// UserInput creates a CLIENT user, or updates the one named by ID.
// Password is mandatory for new users only.
type UserInput struct {
	ID         *uuid.UUID `json:"id"`
	Username   string     `json:"username" binding:"required,min=3,max=100"`
	Password   string     `json:"password" binding:"omitempty,min=8,max=72"`
	Email      string     `json:"email" binding:"omitempty,email,max=200"`
	FirstName  string     `json:"first_name" binding:"max=100"`
	LastName   string     `json:"last_name" binding:"max=100"`
	StatusCode *int       `json:"status_code" binding:"omitempty,oneof=1 2"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID         uuid.UUID         `json:"id"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Address    partner.Address   `json:"address"`
	StatusCode int               `json:"status_code"`
	Status     string            `json:"status"`
	Projects   []ProjectResponse `json:"projects,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ModifiedAt time.Time         `json:"modified_at"`
	Version    int               `json:"version"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	StatusCode  int       `json:"status_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerUserResponse represents a user of a customer
type CustomerUserResponse struct {
	ID          uuid.UUID     `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	Role        identity.Role `json:"role"`
	StatusCode  int           `json:"status_code"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
}

// CustomerWizardResponse is the state of a customer after a wizard save
type CustomerWizardResponse struct {
	CustomerResponse
	Users []CustomerUserResponse `json:"users"`
}

// ToCustomerResponse converts a domain customer to a response. Loaded projects are included.
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		StatusCode: int(c.StatusCode),
		Status:     c.StatusCode.String(),
		CreatedAt:  c.CreatedAt,
		ModifiedAt: c.ModifiedAt,
		Version:    c.Version,
	}
	if len(c.Projects) > 0 {
		resp.Projects = make([]ProjectResponse, len(c.Projects))
		for i := range c.Projects {
			resp.Projects[i] = ToProjectResponse(&c.Projects[i])
		}
	}
	return resp
}

// ToProjectResponse converts a domain project to a response
func ToProjectResponse(p *partner.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Description: p.Description,
		IsDefault:   p.IsDefault,
		StatusCode:  int(p.StatusCode),
		CreatedAt:   p.CreatedAt,
	}
}

// ToCustomerUserResponse converts a domain user to a response
func ToCustomerUserResponse(u *identity.User) CustomerUserResponse {
	return CustomerUserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		StatusCode:  int(u.StatusCode),
		LastLoginAt: u.LastLoginAt,
	}
}

// =============================================================================
// Account DTOs
// =============================================================================

// AccountInput creates or updates a ship-to / bill-to account
type AccountInput struct {
	Name        string       `json:"name" binding:"required,min=1,max=200"`
	Type        string       `json:"type" binding:"required,oneof=SHIP_TO BILL_TO"`
	ContactName string       `json:"contact_name" binding:"max=100"`
	Phone       string       `json:"phone" binding:"max=50"`
	Email       string       `json:"email" binding:"omitempty,email,max=200"`
	Address     AddressInput `json:"address"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          uuid.UUID           `json:"id"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	Name        string              `json:"name"`
	Type        partner.AccountType `json:"type"`
	ContactName string              `json:"contact_name"`
	Phone       string              `json:"phone"`
	Email       string              `json:"email"`
	Address     partner.Address     `json:"address"`
	StatusCode  int                 `json:"status_code"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToAccountResponse converts a domain account to a response
func ToAccountResponse(a *partner.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		CustomerID:  a.CustomerID,
		Name:        a.Name,
		Type:        a.Type,
		ContactName: a.ContactName,
		Phone:       a.Phone,
		Email:       a.Email,
		Address:     a.Address,
		StatusCode:  int(a.StatusCode),
		CreatedAt:   a.CreatedAt,
	}
}

// =============================================================================
// Warehouse DTOs
// =============================================================================

// WarehouseInput creates or updates a warehouse
type WarehouseInput struct {
	Code        string       `json:"code" binding:"required,min=1,max=50,code_format"`
	Name        string       `json:"name" binding:"required,min=1,max=200"`
	ContactName string       `json:"contact_name" binding:"max=100"`
	Phone       string       `json:"phone" binding:"max=50"`
	Email       string       `json:"email" binding:"omitempty,email,max=200"`
	Address     AddressInput `json:"address"`
	StatusCode  *int         `json:"status_code" binding:"omitempty,oneof=1 2"`
	CustomerIDs []uuid.UUID  `json:"customer_ids"`
}

// WarehouseAssignmentInput replaces the customers assigned to a warehouse
type WarehouseAssignmentInput struct {
	CustomerIDs []uuid.UUID `json:"customer_ids"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	ContactName string          `json:"contact_name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     partner.Address `json:"address"`
	StatusCode  int             `json:"status_code"`
	Status      string          `json:"status"`
	CustomerIDs []uuid.UUID     `json:"customer_ids,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ModifiedAt  time.Time       `json:"modified_at"`
	Version     int             `json:"version"`
}

// WarehouseDeleteResult tells how a warehouse delete was carried out
type WarehouseDeleteResult struct {
	Mode partner.DeleteMode `json:"mode"`
}

// ToWarehouseResponse converts a domain warehouse to a response
func ToWarehouseResponse(w *partner.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:          w.ID,
		Code:        w.Code,
		Name:        w.Name,
		ContactName: w.ContactName,
		Phone:       w.Phone,
		Email:       w.Email,
		Address:     w.Address,
		StatusCode:  int(w.StatusCode),
		Status:      w.StatusCode.String(),
		CreatedAt:   w.CreatedAt,
		ModifiedAt:  w.ModifiedAt,
		Version:     w.Version,
	}
}

// =============================================================================
// Carrier DTOs
// =============================================================================

// CarrierInput creates or updates a carrier
type CarrierInput struct {
	Code        string `json:"code" binding:"required,min=1,max=50,code_format"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	TrackingURL string `json:"tracking_url" binding:"omitempty,max=500"`
	StatusCode  *int   `json:"status_code" binding:"omitempty,oneof=1 2"`
}

// CarrierServiceInput creates or updates a carrier service level
type CarrierServiceInput struct {
	Code string `json:"code" binding:"required,min=1,max=50,code_format"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// CarrierResponse represents a carrier in API responses
type CarrierResponse struct {
	ID          uuid.UUID                `json:"id"`
	Code        string                   `json:"code"`
	Name        string                   `json:"name"`
	TrackingURL string                   `json:"tracking_url"`
	StatusCode  int                      `json:"status_code"`
	Services    []CarrierServiceResponse `json:"services"`
	CreatedAt   time.Time                `json:"created_at"`
	Version     int                      `json:"version"`
}

// CarrierServiceResponse represents a carrier service level
type CarrierServiceResponse struct {
	ID         uuid.UUID `json:"id"`
	CarrierID  uuid.UUID `json:"carrier_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	StatusCode int       `json:"status_code"`
}

// ToCarrierResponse converts a domain carrier and its loaded services to a response
func ToCarrierResponse(c *partner.Carrier) CarrierResponse {
	services := make([]CarrierServiceResponse, len(c.Services))
	for i := range c.Services {
		services[i] = ToCarrierServiceResponse(&c.Services[i])
	}
	return CarrierResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		TrackingURL: c.TrackingURL,
		StatusCode:  int(c.StatusCode),
		Services:    services,
		CreatedAt:   c.CreatedAt,
		Version:     c.Version,
	}
}

// ToCarrierServiceResponse converts a domain carrier service to a response
func ToCarrierServiceResponse(s *partner.CarrierService) CarrierServiceResponse {
	return CarrierServiceResponse{
		ID:         s.ID,
		CarrierID:  s.CarrierID,
		Code:       s.Code,
		Name:       s.Name,
		StatusCode: int(s.StatusCode),
	}
}
