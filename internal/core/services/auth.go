package services

import (
	"context"
	"errors"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.AuthService = (*AuthService)(nil)

// sessionTTL is how long a login session stays valid.
const sessionTTL = 24 * time.Hour

// AuthService handles login, token validation and logout.
type AuthService struct {
	users    driven.UserStore
	sessions driven.SessionStore
	auth     driven.AuthAdapter
}

// NewAuthService creates an auth service.
func NewAuthService(users driven.UserStore, sessions driven.SessionStore, auth driven.AuthAdapter) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		auth:     auth,
	}
}

// Authenticate verifies credentials and opens a session.
func (s *AuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        domain.GenerateID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}

	token, err := s.auth.GenerateToken(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Tier:      user.Tier,
		SessionID: session.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: session.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}
	session.Token = token

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// ValidateToken parses a token and checks its session is still live.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	claims, err := s.auth.ParseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	return &domain.AuthContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Tier:      claims.Tier,
		SessionID: claims.SessionID,
	}, nil
}

// Logout closes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
