package identity

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID     uuid.UUID
	Username   string
	Role       Role
	CustomerID *uuid.UUID
}

// IsAdmin reports whether the caller is an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccessCustomer reports whether the caller may see rows owned by customerID.
// Admins see everything; clients only their own customer.
func (p Principal) CanAccessCustomer(customerID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.CustomerID != nil && *p.CustomerID == customerID
}

// ScopeCustomerID returns the customer a client is confined to, or nil for admins
func (p Principal) ScopeCustomerID() *uuid.UUID {
	if p.IsAdmin() {
		return nil
	}
	if p.CustomerID == nil {
		// a client without a customer sees nothing
		nilID := uuid.Nil
		return &nilID
	}
	return p.CustomerID
}

// ResolveCustomerFilter narrows a list query to the customers the caller may see.
// Admins keep the requested customer (nil lists all). Clients are pinned to their
// own customer, and naming a different one is forbidden.
func (p Principal) ResolveCustomerFilter(requested *uuid.UUID) (*uuid.UUID, error) {
	if p.IsAdmin() {
		return requested, nil
	}
	own := p.ScopeCustomerID()
	if requested != nil && *requested != *own {
		return nil, shared.ErrForbidden
	}
	return own, nil
}

// ActorID returns the user ID for audit columns
func (p Principal) ActorID() *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
