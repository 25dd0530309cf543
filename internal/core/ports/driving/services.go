package driving

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// IndexingService starts asynchronous resume-indexing jobs.
type IndexingService interface {
	// StartIndexing admits, records and dispatches an indexing job for
	// the given extracted resume text, returning the job ID immediately.
	StartIndexing(ctx context.Context, user *domain.User, text string) (string, error)
}

// LetterService starts cover-letter generation jobs and serves results.
type LetterService interface {
	// StartGeneration validates the listing and bundle synchronously,
	// then admits, records and dispatches a generation job.
	StartGeneration(ctx context.Context, user *domain.User, listingURL, bundleID string) (string, error)

	// Result returns the generated letter JSON for a completed job
	// owned by the user. Returns domain.ErrNotFound until the job has
	// completed successfully.
	Result(ctx context.Context, ownerID, jobID string) ([]byte, error)
}

// JobService answers job status queries.
type JobService interface {
	// Get retrieves a job owned by the given user.
	// Returns domain.ErrNotFound for unknown or foreign jobs.
	Get(ctx context.Context, ownerID, jobID string) (*domain.Job, error)

	// List retrieves all jobs owned by the user, newest first.
	List(ctx context.Context, ownerID string) ([]*domain.Job, error)
}

// AuthService handles authentication and session validation.
type AuthService interface {
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
	Logout(ctx context.Context, sessionID string) error
}

// UserService manages accounts.
type UserService interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Create registers a new user on the given tier.
	Create(ctx context.Context, email, name, password string, tier domain.TierName) (*domain.User, error)
}
