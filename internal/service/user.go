package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/internal/repository"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = bcrypt.DefaultCost

// UserService manages profile owners.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// CreateUser hashes the password and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// EnsureUser returns the named user, creating it on first use.
func (s *UserService) EnsureUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err = s.CreateUser(ctx, username, password)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return s.users.GetByUsername(ctx, username)
	}
	return user, err
}

// CheckPassword reports whether password matches the user's stored hash.
func (s *UserService) CheckPassword(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
