package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/auth"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/security"
)

const bcryptCost = 12

type Service struct {
	userRepo    repository.UserRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	emailSvc    email.Service
	logger      *logger.Logger
	tokenExpiry time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	jwtSvc auth.JWTService,
	emailSvc email.Service,
	logger *logger.Logger,
	tokenExpiry time.Duration,
) *Service {
	return &Service{
		userRepo:    userRepo,
		jwtSvc:      jwtSvc,
		hasher:      security.NewBcryptHasher(bcryptCost),
		emailSvc:    emailSvc,
		logger:      logger,
		tokenExpiry: tokenExpiry,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email is already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Storage(fmt.Errorf("failed to check email: %w", err))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	role := req.Role
	if role == "" {
		role = model.UserRolePatient
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to create user: %w", err))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
			s.logger.Error(err, "failed to send welcome email", "user_id", user.ID.String())
		}
	}()

	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(errors.New("invalid credentials"))
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to load user: %w", err))
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized(errors.New("account is disabled"))
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(errors.New("invalid credentials"))
	}

	return s.issueToken(user)
}

// Me returns the authenticated user's own record.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to load user: %w", err))
	}
	return user, nil
}

func (s *Service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenExpiry.Seconds()),
		User:        user,
	}, nil
}
