package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotificationAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationAppointmentCompleted NotificationType = "appointment_completed"
)

// Notification is an in-app notification row for a user.
type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Data      json.RawMessage  `db:"data" json:"data,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AppointmentEvent is the payload published for appointment lifecycle
// changes, consumed by downstream subscribers.
type AppointmentEvent struct {
	AppointmentID    uuid.UUID       `json:"appointment_id"`
	PatientID        uuid.UUID       `json:"patient_id"`
	PractitionerID   uuid.UUID       `json:"practitioner_id"`
	PractitionerName string          `json:"practitioner_name"`
	Date             Date            `json:"date"`
	StartTime        TimeOfDay       `json:"start_time"`
	Type             AppointmentType `json:"type"`
	Event            string          `json:"event"`
	OccurredAt       time.Time       `json:"occurred_at"`
}
