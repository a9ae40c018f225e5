package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly time range during which a
// practitioner accepts appointments. Windows on the same day may
// overlap; slot generation dedupes the result.
type AvailabilityWindow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner_id"`
	DayOfWeek      int       `db:"day_of_week" json:"day_of_week"`
	StartTime      TimeOfDay `db:"start_time" json:"start_time"`
	EndTime        TimeOfDay `db:"end_time" json:"end_time"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (w *AvailabilityWindow) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 and 6, got %d", w.DayOfWeek)
	}
	if !w.StartTime.Before(w.EndTime) {
		return fmt.Errorf("window start %s must be before end %s", w.StartTime, w.EndTime)
	}
	return nil
}

// Slot is a candidate bookable interval derived from recurring
// availability. It is never persisted; booking it goes through the
// conflict guard.
type Slot struct {
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

type AvailabilityWindowInput struct {
	DayOfWeek int       `json:"day_of_week"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
	IsActive  *bool     `json:"is_active"`
}

type ReplaceAvailabilityRequest struct {
	Windows []AvailabilityWindowInput `json:"windows" binding:"required"`
}

// SlotsResponse is the wire shape of the slot listing endpoint.
type SlotsResponse struct {
	PractitionerID       uuid.UUID         `json:"practitioner_id"`
	ConsultationDuration int               `json:"consultation_duration"`
	Slots                map[string][]Slot `json:"slots"`
}
