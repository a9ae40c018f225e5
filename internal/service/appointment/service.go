package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/service/notification"
	"github.com/medibook/booking-api/pkg/clock"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
)

// Service owns the appointment lifecycle. Book is the conflict guard:
// the overlap check and the insert commit as one atomic unit, so two
// concurrent requests for the same slot cannot both succeed.
type Service struct {
	repo             repository.AppointmentRepository
	practitionerRepo repository.PractitionerRepository
	notifSvc         notification.Service
	clock            clock.Clock
	logger           *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	practitionerRepo repository.PractitionerRepository,
	notifSvc notification.Service,
	clk clock.Clock,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:             repo,
		practitionerRepo: practitionerRepo,
		notifSvc:         notifSvc,
		clock:            clk,
		logger:           logger,
	}
}

func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	practitioner, err := s.practitionerRepo.Get(ctx, req.PractitionerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("practitioner", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to load practitioner: %w", err))
	}

	appointmentType := req.Type
	if appointmentType == "" {
		appointmentType = model.AppointmentTypeInPerson
	}
	if !appointmentType.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("invalid appointment type %q", appointmentType), nil)
	}
	if appointmentType == model.AppointmentTypeTeleconsultation && !practitioner.TeleconsultationAvailable {
		return nil, apperrors.Validation("practitioner does not offer teleconsultation", nil)
	}

	endTime, err := req.StartTime.Add(practitioner.ConsultationDuration)
	if err != nil {
		if errors.Is(err, model.ErrTimeOverflow) {
			return nil, apperrors.Validation("appointment would end past midnight", err)
		}
		return nil, apperrors.Validation("invalid start time", err)
	}

	today := model.DateOf(s.clock.Now())
	if req.Date.Before(today) {
		return nil, apperrors.Validation("cannot book an appointment in the past", nil)
	}

	appointment := &model.Appointment{
		PatientID:      patientID,
		PractitionerID: req.PractitionerID,
		Date:           req.Date,
		StartTime:      *req.StartTime,
		EndTime:        endTime,
		Status:         model.AppointmentStatusConfirmed,
		Type:           appointmentType,
		Reason:         req.Reason,
	}

	if err := s.repo.BookIfFree(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.Conflict("this slot has already been booked", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to book appointment: %w", err))
	}

	s.notifyAsync(appointment, practitioner, s.notifSvc.AppointmentConfirmed)

	return appointment, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get appointment: %w", err))
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	appointments, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to list appointments: %w", err))
	}
	return appointments, total, nil
}

// Cancel transitions any non-terminal appointment to cancelled,
// recording who cancelled and why. Authorization is the caller's
// concern; actorID is already authorized.
func (s *Service) Cancel(ctx context.Context, id, actorID uuid.UUID, reason string) error {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	switch appointment.Status {
	case model.AppointmentStatusCancelled:
		return apperrors.AlreadyCancelled("appointment is already cancelled")
	case model.AppointmentStatusCompleted:
		return apperrors.TerminalState("cannot cancel a completed appointment")
	}

	now := s.clock.Now()
	appointment.Status = model.AppointmentStatusCancelled
	appointment.CancellationReason = &reason
	appointment.CancelledBy = &actorID
	appointment.CancelledAt = &now

	if err := s.repo.Update(ctx, appointment); err != nil {
		return apperrors.Storage(fmt.Errorf("failed to cancel appointment: %w", err))
	}

	if practitioner, err := s.practitionerRepo.Get(ctx, appointment.PractitionerID); err == nil {
		s.notifyAsync(appointment, practitioner, s.notifSvc.AppointmentCancelled)
	} else {
		s.logger.Error(err, "failed to load practitioner for cancellation notice",
			"appointment_id", appointment.ID.String())
	}

	return nil
}

// Complete transitions a confirmed appointment to completed. A missing
// appointment and one in a non-completable state are distinct errors.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) error {
	return s.finish(ctx, id, model.AppointmentStatusCompleted, notes)
}

// MarkNoShow records that the patient did not attend.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) error {
	return s.finish(ctx, id, model.AppointmentStatusNoShow, "")
}

func (s *Service) finish(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if appointment.Status != model.AppointmentStatusConfirmed {
		return apperrors.TerminalState(fmt.Sprintf("appointment is %s and cannot be marked %s", appointment.Status, status))
	}

	appointment.Status = status
	if notes != "" {
		appointment.Notes = notes
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return apperrors.Storage(fmt.Errorf("failed to update appointment: %w", err))
	}
	return nil
}

// notifyAsync triggers the notification fan-out without blocking the
// request. Dispatch failures never roll back the booking.
func (s *Service) notifyAsync(
	appointment *model.Appointment,
	practitioner *model.Practitioner,
	notify func(context.Context, *model.Appointment, *model.Practitioner) error,
) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := notify(ctx, appointment, practitioner); err != nil {
			s.logger.Error(err, "failed to dispatch appointment notification",
				"appointment_id", appointment.ID.String())
		}
	}()
}
