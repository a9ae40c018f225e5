package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotTaken is returned by BookIfFree when the requested slot
	// overlaps an existing non-cancelled appointment.
	ErrSlotTaken = errors.New("slot already booked")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		// UpdateProfile applies the non-nil fields of req and returns
		// the updated row.
		UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int, error)
	}

	SpecialtyRepository interface {
		List(ctx context.Context) ([]*model.Specialty, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Specialty, error)
	}

	PractitionerRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error)
		Search(ctx context.Context, filters *model.PractitionerFilters) ([]*model.Practitioner, int, error)
	}

	AvailabilityRepository interface {
		ListActive(ctx context.Context, practitionerID uuid.UUID) ([]*model.AvailabilityWindow, error)
		Replace(ctx context.Context, practitionerID uuid.UUID, windows []*model.AvailabilityWindow) error
	}

	AppointmentRepository interface {
		// BookIfFree atomically checks the overlap predicate against
		// non-cancelled appointments and inserts. Returns ErrSlotTaken
		// when the slot is no longer free.
		BookIfFree(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
		ListForPractitionerRange(ctx context.Context, practitionerID uuid.UUID, from, to model.Date) ([]*model.Appointment, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
