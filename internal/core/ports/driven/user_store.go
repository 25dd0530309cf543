package driven

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Save creates or updates a user
	Save(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns domain.ErrNotFound
	// if missing.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	// Save stores a session until its expiry
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if missing or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session (logout).
	Delete(ctx context.Context, id string) error
}

// AuthAdapter handles password hashing and token signing.
type AuthAdapter interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
