package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the surrogate identity and audit timestamps shared
// by every persisted domain type
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh surrogate ID and stamps both timestamps
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the surrogate ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}
