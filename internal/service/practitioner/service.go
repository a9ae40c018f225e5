package practitioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
)

const (
	profileCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "practitioner:"
)

// Service is the practitioner directory: search, profile reads, and
// weekly availability management. Profile reads are cached; the cache
// is invalidated when the practitioner changes their schedule.
type Service struct {
	repo             repository.PractitionerRepository
	availabilityRepo repository.AvailabilityRepository
	cache            *gocache.Cache
}

func NewService(repo repository.PractitionerRepository, availabilityRepo repository.AvailabilityRepository) *Service {
	return &Service{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		cache:            gocache.New(profileCacheTTL, 10*time.Minute),
	}
}

func (s *Service) Search(ctx context.Context, filters *model.PractitionerFilters) ([]*model.Practitioner, int, error) {
	practitioners, total, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to search practitioners: %w", err))
	}
	return practitioners, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.PractitionerDetail, error) {
	key := cacheKeyPrefix + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.PractitionerDetail), nil
	}

	practitioner, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("practitioner", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get practitioner: %w", err))
	}

	windows, err := s.availabilityRepo.ListActive(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to get availability: %w", err))
	}

	detail := &model.PractitionerDetail{
		Practitioner: practitioner,
		Availability: windows,
	}
	s.cache.Set(key, detail, profileCacheTTL)
	return detail, nil
}

// ReplaceAvailability swaps the authenticated practitioner's weekly
// schedule. Window overlaps within a day are tolerated; slot
// generation dedupes them.
func (s *Service) ReplaceAvailability(ctx context.Context, userID uuid.UUID, req *model.ReplaceAvailabilityRequest) ([]*model.AvailabilityWindow, error) {
	practitioner, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("practitioner profile", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get practitioner profile: %w", err))
	}

	windows := make([]*model.AvailabilityWindow, 0, len(req.Windows))
	for _, input := range req.Windows {
		active := true
		if input.IsActive != nil {
			active = *input.IsActive
		}
		w := &model.AvailabilityWindow{
			DayOfWeek: input.DayOfWeek,
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
			IsActive:  active,
		}
		if err := w.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error(), err)
		}
		windows = append(windows, w)
	}

	if err := s.availabilityRepo.Replace(ctx, practitioner.ID, windows); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to replace availability: %w", err))
	}

	s.cache.Delete(cacheKeyPrefix + practitioner.ID.String())
	return windows, nil
}
