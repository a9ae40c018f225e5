package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/clock"
	apperrors "github.com/medibook/booking-api/pkg/errors"
)

// 2025-03-10 is a Monday.
var monday = model.NewDate(2025, time.March, 10)

type fakePractitionerRepo struct {
	practitioners map[uuid.UUID]*model.Practitioner
}

func (f *fakePractitionerRepo) Get(_ context.Context, id uuid.UUID) (*model.Practitioner, error) {
	if p, ok := f.practitioners[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePractitionerRepo) GetByUserID(_ context.Context, _ uuid.UUID) (*model.Practitioner, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePractitionerRepo) Search(_ context.Context, _ *model.PractitionerFilters) ([]*model.Practitioner, int, error) {
	return nil, 0, nil
}

type fakeAvailabilityRepo struct {
	windows []*model.AvailabilityWindow
}

func (f *fakeAvailabilityRepo) ListActive(_ context.Context, _ uuid.UUID) ([]*model.AvailabilityWindow, error) {
	return f.windows, nil
}

func (f *fakeAvailabilityRepo) Replace(_ context.Context, _ uuid.UUID, _ []*model.AvailabilityWindow) error {
	return nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (f *fakeAppointmentRepo) BookIfFree(_ context.Context, _ *model.Appointment) error { return nil }

func (f *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (f *fakeAppointmentRepo) ListForPractitionerRange(_ context.Context, _ uuid.UUID, from, to model.Date) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if !apt.Date.Before(from) && !apt.Date.After(to) && apt.Status != model.AppointmentStatusCancelled {
			out = append(out, apt)
		}
	}
	return out, nil
}

func window(day int, start, end model.TimeOfDay) *model.AvailabilityWindow {
	return &model.AvailabilityWindow{
		ID:        uuid.New(),
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}
}

func newTestService(duration int, windows []*model.AvailabilityWindow, appointments []*model.Appointment, now time.Time) (*Service, uuid.UUID) {
	practitionerID := uuid.New()
	practRepo := &fakePractitionerRepo{
		practitioners: map[uuid.UUID]*model.Practitioner{
			practitionerID: {ID: practitionerID, ConsultationDuration: duration},
		},
	}
	svc := NewService(
		practRepo,
		&fakeAvailabilityRepo{windows: windows},
		&fakeAppointmentRepo{appointments: appointments},
		clock.Fixed(now),
	)
	return svc, practitionerID
}

// A long-past "now" so today-based filtering never interferes.
var quietNow = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

func TestResolveSlotsTiling(t *testing.T) {
	// Window 09:00-09:50 with duration 30 yields exactly one slot; the
	// trailing 20 minutes do not produce a partial slot.
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(9, 50)),
	}
	svc, id := newTestService(30, windows, nil, quietNow)

	slots, duration, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)
	assert.Equal(t, 30, duration)

	daySlots := slots[monday.String()]
	require.Len(t, daySlots, 1)
	assert.Equal(t, "09:00", daySlots[0].StartTime.String())
	assert.Equal(t, "09:30", daySlots[0].EndTime.String())
}

func TestResolveSlotsFullMorning(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(12, 0)),
	}
	svc, id := newTestService(30, windows, nil, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)

	daySlots := slots[monday.String()]
	require.Len(t, daySlots, 6)
	assert.Equal(t, "09:00", daySlots[0].StartTime.String())
	assert.Equal(t, "11:30", daySlots[5].StartTime.String())
}

func TestResolveSlotsExcludesBooked(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(12, 0)),
	}
	appointments := []*model.Appointment{{
		Date:      monday,
		StartTime: model.MustTimeOfDay(10, 0),
		EndTime:   model.MustTimeOfDay(10, 30),
		Status:    model.AppointmentStatusConfirmed,
	}}
	svc, id := newTestService(30, windows, appointments, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)

	daySlots := slots[monday.String()]
	require.Len(t, daySlots, 5)
	for _, slot := range daySlots {
		assert.NotEqual(t, "10:00", slot.StartTime.String())
	}
}

func TestResolveSlotsPartialOverlapExcluded(t *testing.T) {
	// An existing 10:15-10:45 appointment knocks out both the 10:00 and
	// the 10:30 slot; 09:30 and 11:00 are untouched.
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(12, 0)),
	}
	appointments := []*model.Appointment{{
		Date:      monday,
		StartTime: model.MustTimeOfDay(10, 15),
		EndTime:   model.MustTimeOfDay(10, 45),
		Status:    model.AppointmentStatusConfirmed,
	}}
	svc, id := newTestService(30, windows, appointments, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)

	starts := make([]string, 0)
	for _, slot := range slots[monday.String()] {
		starts = append(starts, slot.StartTime.String())
	}
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, starts)
}

func TestResolveSlotsCancelledDoesNotBlock(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(10, 0)),
	}
	appointments := []*model.Appointment{{
		Date:      monday,
		StartTime: model.MustTimeOfDay(9, 0),
		EndTime:   model.MustTimeOfDay(9, 30),
		Status:    model.AppointmentStatusCancelled,
	}}
	svc, id := newTestService(30, windows, appointments, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)
	assert.Len(t, slots[monday.String()], 2)
}

func TestResolveSlotsExcludesPastForToday(t *testing.T) {
	// "Now" is 10:00 on the queried Monday: slots starting at or before
	// 10:00 are gone, the 10:30 slot survives.
	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(12, 0)),
	}
	svc, id := newTestService(30, windows, nil, now)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)

	daySlots := slots[monday.String()]
	require.Len(t, daySlots, 3)
	assert.Equal(t, "10:30", daySlots[0].StartTime.String())
}

func TestResolveSlotsEmptyWindow(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(9, 0)),
	}
	svc, id := newTestService(30, windows, nil, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveSlotsDedupesOverlappingWindows(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(11, 0)),
		window(1, model.MustTimeOfDay(10, 0), model.MustTimeOfDay(12, 0)),
	}
	svc, id := newTestService(60, windows, nil, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)

	starts := make([]string, 0)
	for _, slot := range slots[monday.String()] {
		starts = append(starts, slot.StartTime.String())
	}
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, starts)
}

func TestResolveSlotsMultiDayRange(t *testing.T) {
	// Only Monday has a window; the rest of the week contributes nothing.
	windows := []*model.AvailabilityWindow{
		window(1, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(10, 0)),
	}
	svc, id := newTestService(30, windows, nil, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday.AddDays(6))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Len(t, slots[monday.String()], 2)
}

func TestResolveSlotsIgnoresInactiveDayMismatch(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window(2, model.MustTimeOfDay(9, 0), model.MustTimeOfDay(12, 0)),
	}
	svc, id := newTestService(30, windows, nil, quietNow)

	slots, _, err := svc.ResolveSlots(context.Background(), id, monday, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveSlotsUnknownPractitioner(t *testing.T) {
	svc, _ := newTestService(30, nil, nil, quietNow)

	_, _, err := svc.ResolveSlots(context.Background(), uuid.New(), monday, monday)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestResolveSlotsInvalidRange(t *testing.T) {
	svc, id := newTestService(30, nil, nil, quietNow)

	_, _, err := svc.ResolveSlots(context.Background(), id, monday, monday.AddDays(-1))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
