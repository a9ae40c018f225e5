package model

import (
	"github.com/google/uuid"
)

type Specialty struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Icon        string    `db:"icon" json:"icon,omitempty"`

	// PractitionerCount is only populated on single-specialty lookups.
	PractitionerCount int `db:"practitioner_count" json:"practitioner_count,omitempty"`
}
