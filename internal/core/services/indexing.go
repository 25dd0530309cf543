package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
	"github.com/lettersmith/lettersmith-core/internal/textproc"
	"github.com/lettersmith/lettersmith-core/internal/vecindex"
	"github.com/lettersmith/lettersmith-core/internal/worker"
)

// Verify interface compliance
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService runs the resume indexing pipeline as background jobs:
// normalize, segment, overlap, embed, build the vector index and upload
// the bundle artifacts.
type IndexingService struct {
	jobs      driven.JobStore
	blobs     driven.BlobStore
	embedder  driven.EmbeddingService
	admission *AdmissionService
	pool      *worker.Pool
	logger    *slog.Logger
}

// NewIndexingService creates an indexing service.
func NewIndexingService(
	jobs driven.JobStore,
	blobs driven.BlobStore,
	embedder driven.EmbeddingService,
	admission *AdmissionService,
	pool *worker.Pool,
	logger *slog.Logger,
) *IndexingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexingService{
		jobs:      jobs,
		blobs:     blobs,
		embedder:  embedder,
		admission: admission,
		pool:      pool,
		logger:    logger,
	}
}

// StartIndexing admits the request, creates the job record and
// dispatches the pipeline, returning the job ID immediately. The record
// is visible to status queries before the body starts.
func (s *IndexingService) StartIndexing(ctx context.Context, user *domain.User, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: empty document text", domain.ErrInvalidInput)
	}

	res, err := s.admission.Admit(ctx, user, domain.JobKindIndexResume)
	if err != nil {
		return "", err
	}

	job := domain.NewJob(domain.JobKindIndexResume, user.ID)
	if err := s.jobs.Create(ctx, job); err != nil {
		_ = s.admission.Release(ctx, res, false)
		return "", fmt.Errorf("create job: %w", err)
	}

	err = s.pool.Submit("index-resume", func(taskCtx context.Context) {
		s.runIndexing(taskCtx, job.ID, res, text)
	})
	if err != nil {
		// Saturated pool: back-pressure the caller and give the quota
		// slot back. The record stays, terminally failed.
		_ = s.jobs.Fail(ctx, job.ID, domain.FailedStatus(domain.StatusStarting, err))
		_ = s.admission.Release(ctx, res, false)
		return "", err
	}

	return job.ID, nil
}

// runIndexing is the job body. Any fault is caught here, recorded as
// the job's terminal failed status together with the step that was in
// progress, and rolls back the quota reservation. Nothing propagates:
// the caller already holds the job ID.
func (s *IndexingService) runIndexing(ctx context.Context, jobID string, res *domain.Reservation, text string) {
	step := domain.StatusStarting

	fail := func(err error) {
		status := domain.FailedStatus(step, err)
		if ferr := s.jobs.Fail(ctx, jobID, status); ferr != nil {
			s.logger.Error("failed to record job failure", "job_id", jobID, "error", ferr)
		}
		_ = s.admission.Release(ctx, res, false)
		s.logger.Error("indexing job failed", "job_id", jobID, "step", step, "error", err)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
	}()

	advance := func(status string) {
		step = status
		if err := s.jobs.UpdateStatus(ctx, jobID, status); err != nil {
			s.logger.Warn("status update failed", "job_id", jobID, "status", status, "error", err)
		}
	}

	advance("Cleaning text")
	text = textproc.Normalize(text)

	advance("Chunking text")
	chunks := textproc.Segment(text)
	if len(chunks) == 0 {
		fail(fmt.Errorf("%w: no chunks extracted", domain.ErrInvalidInput))
		return
	}

	advance("Overlapping chunks")
	overlapping := textproc.Overlap(chunks)

	advance("Getting embeddings")
	vectors, err := s.embedder.Embed(ctx, overlapping)
	if err != nil {
		fail(err)
		return
	}
	if len(vectors) != len(overlapping) {
		fail(fmt.Errorf("embedding gateway returned %d vectors for %d chunks", len(vectors), len(overlapping)))
		return
	}

	advance("Building vector index")
	ix, err := vecindex.Build(vectors)
	if err != nil {
		fail(err)
		return
	}

	advance("Serializing index")
	blob, err := ix.Serialize()
	if err != nil {
		fail(err)
		return
	}

	advance("Uploading artifacts")
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		fail(err)
		return
	}
	bundle := &domain.Bundle{
		ID:        jobID,
		OwnerID:   job.OwnerID,
		Chunks:    overlapping,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := bundle.Encode()
	if err != nil {
		fail(err)
		return
	}
	if err := s.blobs.Put(ctx, domain.IndexKey(jobID), blob); err != nil {
		fail(fmt.Errorf("upload index: %w", err))
		return
	}
	if err := s.blobs.Put(ctx, domain.BundleKey(jobID), encoded); err != nil {
		fail(fmt.Errorf("upload bundle: %w", err))
		return
	}

	if err := s.jobs.Complete(ctx, jobID); err != nil {
		s.logger.Error("failed to record completion", "job_id", jobID, "error", err)
	}
	_ = s.admission.Release(ctx, res, true)

	s.logger.Info("indexing job completed",
		"job_id", jobID,
		"chunks", len(chunks),
		"dimension", ix.Dim(),
	)
}
