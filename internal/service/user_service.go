package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"threadline/internal/auth"
	"threadline/internal/model"
	"threadline/internal/notify"
	"threadline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	repo     repository.UserRepository
	auth     *auth.Manager
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, authManager *auth.Manager, notifier notify.Notifier, logger zerolog.Logger) UserService {
	return &userService{
		repo:     repo,
		auth:     authManager,
		notifier: notifier,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// Register creates an account and issues a token.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "A valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if err == model.ErrEmailTaken {
			return nil, model.ErrEmailTaken
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	token, err := s.auth.Generate(user.ID, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")

	go func(email, name string) {
		if notifyErr := s.notifier.Welcome(context.Background(), email, name); notifyErr != nil {
			s.logger.Warn().Err(notifyErr).Msg("welcome notification failed")
		}
	}(user.Email, user.Name)

	return &model.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password answer identically.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.auth.Generate(user.ID, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &model.AuthResponse{Token: token, User: user}, nil
}

// GetByID retrieves an account.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// ListCustomers retrieves customer accounts (admin), newest first.
func (s *userService) ListCustomers(ctx context.Context, limit, offset int) ([]model.User, error) {
	limit, offset = clampPage(limit, offset)

	users, err := s.repo.List(ctx, model.RoleUser, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list customers")
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return users, nil
}
