package identity

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"

	AggregateTypeUser = "User"
)

// UserCreatedEvent is raised when a user account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// NewUserCreatedEvent creates a UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, customerOf(u)),
		UserID:          u.ID,
		Username:        u.Username,
		Role:            u.Role,
	}
}

// UserPasswordChangedEvent is raised after a password change; consumers
// invalidate outstanding tokens for the user.
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewUserPasswordChangedEvent creates a UserPasswordChangedEvent
func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, u.ID, customerOf(u)),
		UserID:          u.ID,
	}
}

func customerOf(u *User) uuid.UUID {
	if u.CustomerID == nil {
		return uuid.Nil
	}
	return *u.CustomerID
}
