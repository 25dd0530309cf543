package driven

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// JobStore persists job records and their status transitions.
// Reads and writes to a single record must be atomic with respect to
// other accesses to the same record; cross-record ordering is not
// required. Records are never deleted by this subsystem.
type JobStore interface {
	// Create stores a new job record. The record must be visible to
	// Get before the job body starts executing.
	Create(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID. Returns domain.ErrNotFound for an
	// unknown identity.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// UpdateStatus overwrites the job's status string. Progress updates
	// replace the previous value wholesale.
	UpdateStatus(ctx context.Context, id string, status string) error

	// Complete marks the job Completed and stamps the finish time.
	Complete(ctx context.Context, id string) error

	// Fail records a terminal failure status and stamps the finish time.
	Fail(ctx context.Context, id string, status string) error

	// ListByOwner retrieves all jobs created by a user, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Job, error)
}
