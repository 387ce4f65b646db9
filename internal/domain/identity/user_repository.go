package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username (case-insensitive)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByCustomer returns all users of a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]User, error)

	// ExistsByUsername checks if a username is taken, ignoring excludeID when set
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)

	// List returns users matching the filter
	List(ctx context.Context, filter shared.Filter) ([]User, int64, error)
}
