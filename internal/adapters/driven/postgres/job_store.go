package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*JobStore)(nil)

// JobStore implements driven.JobStore using PostgreSQL
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// Create stores a new job record
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (job_id, created_by, job_type, status, created, finished)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		string(job.Kind),
		job.Status,
		job.CreatedAt,
		NullTime(job.FinishedAt),
	)
	return err
}

// Get retrieves a job by ID
func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT job_id, created_by, job_type, status, created, finished
		FROM jobs
		WHERE job_id = $1
	`

	var job domain.Job
	var finished sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.OwnerID,
		&job.Kind,
		&job.Status,
		&job.CreatedAt,
		&finished,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	job.FinishedAt = TimePtr(finished)
	return &job, nil
}

// UpdateStatus overwrites the job's status string
func (s *JobStore) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE jobs SET status = $1 WHERE job_id = $2`
	return s.setStatus(ctx, query, status, id)
}

// Complete marks the job Completed and stamps the finish time
func (s *JobStore) Complete(ctx context.Context, id string) error {
	query := `UPDATE jobs SET status = $1, finished = $2 WHERE job_id = $3`
	result, err := s.db.ExecContext(ctx, query, domain.StatusCompleted, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Fail records a terminal failure status and stamps the finish time
func (s *JobStore) Fail(ctx context.Context, id string, status string) error {
	query := `UPDATE jobs SET status = $1, finished = $2 WHERE job_id = $3`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListByOwner retrieves all jobs created by a user, newest first
func (s *JobStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Job, error) {
	query := `
		SELECT job_id, created_by, job_type, status, created, finished
		FROM jobs
		WHERE created_by = $1
		ORDER BY created DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		var job domain.Job
		var finished sql.NullTime

		err := rows.Scan(
			&job.ID,
			&job.OwnerID,
			&job.Kind,
			&job.Status,
			&job.CreatedAt,
			&finished,
		)
		if err != nil {
			return nil, err
		}

		job.FinishedAt = TimePtr(finished)
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (s *JobStore) setStatus(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
