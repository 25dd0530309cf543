package services

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.JobService = (*JobService)(nil)

// JobService answers job status queries scoped to the owning user.
type JobService struct {
	jobs driven.JobStore
}

// NewJobService creates a job query service.
func NewJobService(jobs driven.JobStore) *JobService {
	return &JobService{jobs: jobs}
}

// Get retrieves a job owned by the given user. Jobs owned by other
// users are indistinguishable from missing ones.
func (s *JobService) Get(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// List retrieves all jobs owned by the user, newest first.
func (s *JobService) List(ctx context.Context, ownerID string) ([]*domain.Job, error) {
	return s.jobs.ListByOwner(ctx, ownerID)
}
