// Package memory provides in-process store adapters guarded by mutexes.
// They are suitable for single-process deployments only: jobs, sessions
// and reservations do not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*JobStore)(nil)

// JobStore implements driven.JobStore with an in-memory map.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

// NewJobStore creates an empty in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*domain.Job)}
}

// Create stores a new job record.
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

// UpdateStatus overwrites the job's status string.
func (s *JobStore) UpdateStatus(ctx context.Context, id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	return nil
}

// Complete marks the job Completed and stamps the finish time.
func (s *JobStore) Complete(ctx context.Context, id string) error {
	return s.finish(id, domain.StatusCompleted)
}

// Fail records a terminal failure status and stamps the finish time.
func (s *JobStore) Fail(ctx context.Context, id string, status string) error {
	return s.finish(id, status)
}

func (s *JobStore) finish(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	job.Status = status
	job.FinishedAt = &now
	return nil
}

// ListByOwner retrieves all jobs created by a user, newest first.
func (s *JobStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*domain.Job
	for _, job := range s.jobs {
		if job.OwnerID == ownerID {
			cp := *job
			jobs = append(jobs, &cp)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}
