package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

type AppointmentType string

const (
	AppointmentTypeInPerson         AppointmentType = "in_person"
	AppointmentTypeTeleconsultation AppointmentType = "teleconsultation"
)

func (t AppointmentType) Valid() bool {
	return t == AppointmentTypeInPerson || t == AppointmentTypeTeleconsultation
}

type Appointment struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	PractitionerID     uuid.UUID         `db:"practitioner_id" json:"practitioner_id"`
	Date               Date              `db:"appointment_date" json:"date"`
	StartTime          TimeOfDay         `db:"start_time" json:"start_time"`
	EndTime            TimeOfDay         `db:"end_time" json:"end_time"`
	Status             AppointmentStatus `db:"status" json:"status"`
	Type               AppointmentType   `db:"type" json:"type"`
	Reason             string            `db:"reason" json:"reason,omitempty"`
	Notes              string            `db:"notes" json:"notes,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID        `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	PractitionerID uuid.UUID `json:"practitioner_id" binding:"required"`
	Date           Date      `json:"date" binding:"required"`
	// StartTime is a pointer so that a midnight start ("00:00", the
	// type's zero value) still satisfies the required check.
	StartTime *TimeOfDay      `json:"start_time" binding:"required"`
	Type      AppointmentType `json:"type"`
	Reason    string          `json:"reason" binding:"max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type CompleteAppointmentRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

type AppointmentFilters struct {
	PatientID      uuid.UUID
	PractitionerID uuid.UUID
	Status         AppointmentStatus
	Upcoming       bool
	Page           int
	Limit          int
}
