package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetModifiedAt() time.Time
}

// BaseEntity provides the identity and audit columns shared by every table
type BaseEntity struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	ModifiedBy *uuid.UUID `gorm:"type:uuid" json:"modified_by,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	ModifiedAt time.Time  `gorm:"not null;autoUpdateTime" json:"modified_at"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetModifiedAt returns the last modification timestamp
func (e *BaseEntity) GetModifiedAt() time.Time {
	return e.ModifiedAt
}

// Touch records a modification by actor. A nil actor leaves ModifiedBy untouched.
func (e *BaseEntity) Touch(actor *uuid.UUID) {
	e.ModifiedAt = time.Now()
	if actor != nil {
		e.ModifiedBy = actor
	}
}

// SetCreator stamps both audit user columns for a new row
func (e *BaseEntity) SetCreator(actor *uuid.UUID) {
	e.CreatedBy = actor
	e.ModifiedBy = actor
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:         uuid.New(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}
