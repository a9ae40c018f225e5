package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/clock"
	apperrors "github.com/medibook/booking-api/pkg/errors"
)

// DefaultRangeDays is the slot horizon used when the caller gives no
// explicit date range: today through today+6.
const DefaultRangeDays = 6

// Service computes bookable slots from recurring weekly availability.
// It is read-only; reserving a slot goes through the appointment
// service's conflict guard.
type Service struct {
	practitionerRepo repository.PractitionerRepository
	availabilityRepo repository.AvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
	clock            clock.Clock
}

func NewService(
	practitionerRepo repository.PractitionerRepository,
	availabilityRepo repository.AvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
	clk clock.Clock,
) *Service {
	return &Service{
		practitionerRepo: practitionerRepo,
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		clock:            clk,
	}
}

// ResolveSlots returns the free slots per date for the inclusive range
// [from, to]. Dates without slots are absent from the result.
func (s *Service) ResolveSlots(ctx context.Context, practitionerID uuid.UUID, from, to model.Date) (map[string][]model.Slot, int, error) {
	if to.Before(from) {
		return nil, 0, apperrors.Validation("date range end is before start", nil)
	}

	practitioner, err := s.practitionerRepo.Get(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, apperrors.NotFound("practitioner", err)
		}
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to load practitioner: %w", err))
	}

	duration := practitioner.ConsultationDuration
	if duration <= 0 {
		return nil, 0, apperrors.Validation("practitioner has no consultation duration configured", nil)
	}

	windows, err := s.availabilityRepo.ListActive(ctx, practitionerID)
	if err != nil {
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to load availability: %w", err))
	}

	appointments, err := s.appointmentRepo.ListForPractitionerRange(ctx, practitionerID, from, to)
	if err != nil {
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to load appointments: %w", err))
	}

	booked := make(map[string][]*model.Appointment)
	for _, apt := range appointments {
		key := apt.Date.String()
		booked[key] = append(booked[key], apt)
	}

	now := s.clock.Now()
	today := model.DateOf(now)
	currentTime, _ := model.NewTimeOfDay(now.Hour(), now.Minute())

	result := make(map[string][]model.Slot)
	for d := from; !d.After(to); d = d.AddDays(1) {
		slots := s.slotsForDate(d, windows, booked[d.String()], duration, today, currentTime)
		if len(slots) > 0 {
			result[d.String()] = slots
		}
	}
	return result, duration, nil
}

func (s *Service) slotsForDate(
	d model.Date,
	windows []*model.AvailabilityWindow,
	existing []*model.Appointment,
	duration int,
	today model.Date,
	currentTime model.TimeOfDay,
) []model.Slot {
	// Overlapping windows tile independently; dedupe by start time.
	seen := make(map[int]bool)
	var slots []model.Slot

	for _, w := range windows {
		if w.DayOfWeek != d.DayOfWeek() {
			continue
		}

		for start := w.StartTime; ; {
			end, err := start.Add(duration)
			if err != nil {
				break
			}
			if end.After(w.EndTime) {
				// Trailing partial interval; no rounding, no partial slots.
				break
			}

			if s.slotFree(existing, start, end) &&
				!(d.Equal(today) && !start.After(currentTime)) &&
				!seen[start.Minutes()] {
				seen[start.Minutes()] = true
				slots = append(slots, model.Slot{StartTime: start, EndTime: end})
			}

			start = end
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots
}

func (s *Service) slotFree(existing []*model.Appointment, start, end model.TimeOfDay) bool {
	for _, apt := range existing {
		if model.Overlaps(start, end, apt.StartTime, apt.EndTime) {
			return false
		}
	}
	return true
}
