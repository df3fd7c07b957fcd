package model

import (
	"time"

	"github.com/google/uuid"
)

// Meta is the storage metadata carried by every record. It is kept in table
// columns, not in the JSONB body, so all fields are omitted when zero.
type Meta struct {
	ID        uuid.UUID `json:"_id,omitzero"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Metadata gives the generic store access to the embedded Meta.
func (m *Meta) Metadata() *Meta { return m }

// Record is the constraint satisfied by a pointer to any record struct
// embedding Meta.
type Record[T any] interface {
	*T
	Metadata() *Meta
}

// Checker is implemented by records with rules spanning more than one field.
type Checker interface {
	Check() []FieldError
}
