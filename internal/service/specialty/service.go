package specialty

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

const listCacheKey = "specialties"

type Service struct {
	repo  repository.SpecialtyRepository
	cache *gocache.Cache
}

func NewService(repo repository.SpecialtyRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(time.Hour, 2*time.Hour),
	}
}

// List returns all specialties. The catalogue changes rarely, so the
// result is cached for an hour.
func (s *Service) List(ctx context.Context) ([]*model.Specialty, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Specialty), nil
	}

	specialties, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list specialties: %w", err))
	}

	s.cache.Set(listCacheKey, specialties, time.Hour)
	return specialties, nil
}

// Get returns one specialty with its practitioner headcount. Counts
// drift as practitioners register, so detail lookups skip the cache.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Specialty, error) {
	specialty, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("specialty", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get specialty: %w", err))
	}
	return specialty, nil
}
