package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/clock"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
)

var (
	testNow  = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	tomorrow = model.DateOf(testNow).AddDays(1)
)

// memAppointmentRepo keeps appointments in memory and enforces the same
// overlap rule the database does, so conflict paths are exercised
// without Postgres.
type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *memAppointmentRepo) BookIfFree(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.PractitionerID == apt.PractitionerID &&
			existing.Date.Equal(apt.Date) &&
			existing.Status != model.AppointmentStatusCancelled &&
			model.Overlaps(apt.StartTime, apt.EndTime, existing.StartTime, existing.EndTime) {
			return repository.ErrSlotTaken
		}
	}
	apt.ID = uuid.New()
	r.appointments[apt.ID] = apt
	return nil
}

func (r *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *apt
	return &copied, nil
}

func (r *memAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *apt
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *memAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (r *memAppointmentRepo) ListForPractitionerRange(_ context.Context, _ uuid.UUID, _, _ model.Date) ([]*model.Appointment, error) {
	return nil, nil
}

type fakePractitionerRepo struct {
	practitioner *model.Practitioner
}

func (f *fakePractitionerRepo) Get(_ context.Context, id uuid.UUID) (*model.Practitioner, error) {
	if f.practitioner != nil && f.practitioner.ID == id {
		return f.practitioner, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePractitionerRepo) GetByUserID(_ context.Context, _ uuid.UUID) (*model.Practitioner, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePractitionerRepo) Search(_ context.Context, _ *model.PractitionerFilters) ([]*model.Practitioner, int, error) {
	return nil, 0, nil
}

type noopNotifier struct{}

func (noopNotifier) AppointmentConfirmed(_ context.Context, _ *model.Appointment, _ *model.Practitioner) error {
	return nil
}

func (noopNotifier) AppointmentCancelled(_ context.Context, _ *model.Appointment, _ *model.Practitioner) error {
	return nil
}

func (noopNotifier) ListForUser(_ context.Context, _ uuid.UUID, _ bool) ([]*model.Notification, error) {
	return nil, nil
}

func (noopNotifier) MarkRead(_ context.Context, _, _ uuid.UUID) error { return nil }

func (noopNotifier) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) { return 0, nil }

func newTestService(t *testing.T) (*Service, *memAppointmentRepo, *model.Practitioner) {
	t.Helper()
	practitioner := &model.Practitioner{
		ID:                        uuid.New(),
		ConsultationDuration:      30,
		TeleconsultationAvailable: false,
	}
	repo := newMemAppointmentRepo()
	svc := NewService(
		repo,
		&fakePractitionerRepo{practitioner: practitioner},
		noopNotifier{},
		clock.Fixed(testNow),
		logger.NewLogger(nil),
	)
	return svc, repo, practitioner
}

func bookReq(practitionerID uuid.UUID, date model.Date, start model.TimeOfDay) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		PractitionerID: practitionerID,
		Date:           date,
		StartTime:      &start,
		Reason:         "checkup",
	}
}

func TestBookSuccess(t *testing.T) {
	svc, _, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, model.AppointmentTypeInPerson, apt.Type)
	assert.Equal(t, "10:30", apt.EndTime.String())
}

func TestBookUnknownPractitioner(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookReq(uuid.New(), tomorrow, model.MustTimeOfDay(10, 0)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestBookTeleconsultationNotOffered(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	req := bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0))
	req.Type = model.AppointmentTypeTeleconsultation

	_, err := svc.Book(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestBookPastDate(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	yesterday := model.DateOf(testNow).AddDays(-1)
	_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, yesterday, model.MustTimeOfDay(10, 0)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestBookEndsPastMidnight(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(23, 50)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "midnight")
}

func TestBookConflict(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestBookSameSlotConcurrentlyOneWinner(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	const attempts = 8
	errs := make(chan error, attempts)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.Is(err, apperrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestBookOverlappingSlotConflicts(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 15)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestBookAdjacentSlotSucceeds(t *testing.T) {
	svc, _, practitioner := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 30)))
	require.NoError(t, err)
}

func TestBookAfterCancellationSucceeds(t *testing.T) {
	svc, _, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), apt.ID, patientID, "cannot make it"))

	_, err = svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)
}

func TestCancelRecordsMetadata(t *testing.T) {
	svc, repo, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), apt.ID, patientID, "schedule clash"))

	stored, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, "schedule clash", *stored.CancellationReason)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, patientID, *stored.CancelledBy)
	require.NotNil(t, stored.CancelledAt)
	assert.Equal(t, testNow, *stored.CancelledAt)
}

func TestCancelTwice(t *testing.T) {
	svc, _, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), apt.ID, patientID, "first"))

	err = svc.Cancel(context.Background(), apt.ID, patientID, "second")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyCancelled))
}

func TestCancelCompleted(t *testing.T) {
	svc, _, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), apt.ID, "all good"))

	err = svc.Cancel(context.Background(), apt.ID, patientID, "too late")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTerminalState))
}

func TestCancelMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Cancel(context.Background(), uuid.New(), uuid.New(), "whoops")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCompleteConfirmed(t *testing.T) {
	svc, repo, practitioner := newTestService(t)

	apt, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), apt.ID, "routine visit"))

	stored, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
	assert.Equal(t, "routine visit", stored.Notes)
}

func TestCompleteMissingIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Complete(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCompleteCancelledIsTerminal(t *testing.T) {
	svc, _, practitioner := newTestService(t)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), apt.ID, patientID, "moved"))

	err = svc.Complete(context.Background(), apt.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTerminalState))
}

func TestMarkNoShow(t *testing.T) {
	svc, repo, practitioner := newTestService(t)

	apt, err := svc.Book(context.Background(), uuid.New(), bookReq(practitioner.ID, tomorrow, model.MustTimeOfDay(10, 0)))
	require.NoError(t, err)

	require.NoError(t, svc.MarkNoShow(context.Background(), apt.ID))

	stored, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, stored.Status)
}
