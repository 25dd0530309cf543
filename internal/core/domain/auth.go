package domain

import "time"

// Session represents an authenticated login session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TokenClaims are the claims carried inside an auth token.
type TokenClaims struct {
	UserID    string
	Email     string
	Tier      TierName
	SessionID string
	IssuedAt  int64
	ExpiresAt int64
}

// AuthContext is the authenticated identity attached to a request.
type AuthContext struct {
	UserID    string
	Email     string
	Tier      TierName
	SessionID string
}

// IsAdmin reports whether the authenticated user is on the admin tier.
func (a *AuthContext) IsAdmin() bool {
	return a.Tier == TierAdmin
}

// LoginRequest is the credentials payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
