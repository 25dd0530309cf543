package services

import (
	"context"
	"strings"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.UserService = (*UserService)(nil)

// UserService manages user accounts.
type UserService struct {
	users driven.UserStore
	auth  driven.AuthAdapter
}

// NewUserService creates a user service.
func NewUserService(users driven.UserStore, auth driven.AuthAdapter) *UserService {
	return &UserService{users: users, auth: auth}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, email, name, password string, tier domain.TierName) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           domain.GenerateID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Tier:         tier,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
