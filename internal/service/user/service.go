package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/security"
)

const bcryptCost = 12

// Service covers account self-management: profile updates, password
// changes, and the admin-only user directory.
type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo:   repo,
		hasher: security.NewBcryptHasher(bcryptCost),
	}
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to update profile: %w", err))
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new
// hash. A wrong current password is a validation failure, not an auth
// failure; the caller is already authenticated.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.ChangePasswordRequest) error {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return apperrors.Storage(fmt.Errorf("failed to load user: %w", err))
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Validation("current password is incorrect", nil)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return apperrors.Storage(fmt.Errorf("failed to change password: %w", err))
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int, error) {
	users, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Storage(fmt.Errorf("failed to list users: %w", err))
	}
	return users, total, nil
}
