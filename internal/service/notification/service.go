package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
)

// Service fans out appointment lifecycle notifications: an email to the
// patient, an in-app notification row, and an outbox event for
// downstream subscribers. Individual channel failures are logged and do
// not fail the triggering operation.
type Service interface {
	AppointmentConfirmed(ctx context.Context, apt *model.Appointment, practitioner *model.Practitioner) error
	AppointmentCancelled(ctx context.Context, apt *model.Appointment, practitioner *model.Practitioner) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	notifRepo  repository.NotificationRepository
	outboxRepo repository.OutboxRepository
	userRepo   repository.UserRepository
	emailSvc   email.Service
	logger     *logger.Logger
}

func NewService(
	notifRepo repository.NotificationRepository,
	outboxRepo repository.OutboxRepository,
	userRepo repository.UserRepository,
	emailSvc email.Service,
	logger *logger.Logger,
) Service {
	return &service{
		notifRepo:  notifRepo,
		outboxRepo: outboxRepo,
		userRepo:   userRepo,
		emailSvc:   emailSvc,
		logger:     logger,
	}
}

func (s *service) AppointmentConfirmed(ctx context.Context, apt *model.Appointment, practitioner *model.Practitioner) error {
	patient, err := s.userRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient: %w", err)
	}

	if err := s.emailSvc.SendAppointmentConfirmation(ctx, patient.Email, patient.FirstName,
		practitioner.FullName(), apt.Date, apt.StartTime, apt.Type); err != nil {
		s.logger.Error(err, "failed to send confirmation email", "appointment_id", apt.ID.String())
	}

	message := fmt.Sprintf("Your appointment with %s on %s at %s has been confirmed.",
		practitioner.FullName(), apt.Date, apt.StartTime)
	s.createInApp(ctx, apt, model.NotificationAppointmentConfirmed, "Appointment confirmed", message)

	s.publishEvent(ctx, apt, practitioner, "appointment_confirmed")
	return nil
}

func (s *service) AppointmentCancelled(ctx context.Context, apt *model.Appointment, practitioner *model.Practitioner) error {
	patient, err := s.userRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient: %w", err)
	}

	if err := s.emailSvc.SendAppointmentCancellation(ctx, patient.Email, patient.FirstName,
		practitioner.FullName(), apt.Date, apt.StartTime); err != nil {
		s.logger.Error(err, "failed to send cancellation email", "appointment_id", apt.ID.String())
	}

	message := fmt.Sprintf("Your appointment with %s on %s at %s has been cancelled.",
		practitioner.FullName(), apt.Date, apt.StartTime)
	s.createInApp(ctx, apt, model.NotificationAppointmentCancelled, "Appointment cancelled", message)

	s.publishEvent(ctx, apt, practitioner, "appointment_cancelled")
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	notifications, err := s.notifRepo.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list notifications: %w", err))
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notifRepo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("notification", err)
		}
		return apperrors.Storage(fmt.Errorf("failed to mark notification read: %w", err))
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	marked, err := s.notifRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.Storage(fmt.Errorf("failed to mark notifications read: %w", err))
	}
	return marked, nil
}

func (s *service) createInApp(ctx context.Context, apt *model.Appointment, typ model.NotificationType, title, message string) {
	data, _ := json.Marshal(map[string]interface{}{"appointment_id": apt.ID})
	notification := &model.Notification{
		UserID:  apt.PatientID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		s.logger.Error(err, "failed to create in-app notification", "appointment_id", apt.ID.String())
	}
}

func (s *service) publishEvent(ctx context.Context, apt *model.Appointment, practitioner *model.Practitioner, event string) {
	payload, err := json.Marshal(&model.AppointmentEvent{
		AppointmentID:    apt.ID,
		PatientID:        apt.PatientID,
		PractitionerID:   apt.PractitionerID,
		PractitionerName: practitioner.FullName(),
		Date:             apt.Date,
		StartTime:        apt.StartTime,
		Type:             apt.Type,
		Event:            event,
		OccurredAt:       time.Now(),
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal appointment event", "appointment_id", apt.ID.String())
		return
	}

	if err := s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: event,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue appointment event", "appointment_id", apt.ID.String())
	}
}
