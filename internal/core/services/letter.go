package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
	"github.com/lettersmith/lettersmith-core/internal/vecindex"
	"github.com/lettersmith/lettersmith-core/internal/worker"
)

// Verify interface compliance
var _ driving.LetterService = (*LetterService)(nil)

// Retrieval intents used for every generation job: evidence for the
// listing's description at a larger k, applicant identity details at a
// smaller k each.
const (
	descriptionK = 8
	detailK      = 3
)

// LetterService runs cover-letter generation jobs: retrieve resume
// evidence for the listing, assemble the prompt, ask the letter writer
// and persist the result.
type LetterService struct {
	jobs      driven.JobStore
	blobs     driven.BlobStore
	fetcher   driven.ListingFetcher
	writer    driven.LetterWriter
	retriever *Retriever
	admission *AdmissionService
	pool      *worker.Pool
	logger    *slog.Logger
}

// LetterServiceConfig holds the collaborators for a LetterService.
type LetterServiceConfig struct {
	Jobs      driven.JobStore
	Blobs     driven.BlobStore
	Fetcher   driven.ListingFetcher
	Writer    driven.LetterWriter
	Retriever *Retriever
	Admission *AdmissionService
	Pool      *worker.Pool
	Logger    *slog.Logger
}

// NewLetterService creates a letter generation service.
func NewLetterService(cfg LetterServiceConfig) *LetterService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LetterService{
		jobs:      cfg.Jobs,
		blobs:     cfg.Blobs,
		fetcher:   cfg.Fetcher,
		writer:    cfg.Writer,
		retriever: cfg.Retriever,
		admission: cfg.Admission,
		pool:      cfg.Pool,
		logger:    logger,
	}
}

// StartGeneration validates the listing and the bundle synchronously,
// then admits, records and dispatches the generation job. The returned
// job ID is immediately queryable.
func (s *LetterService) StartGeneration(ctx context.Context, user *domain.User, listingURL, bundleID string) (string, error) {
	listingURL = strings.TrimSpace(listingURL)
	bundleID = strings.TrimSpace(bundleID)
	if listingURL == "" || bundleID == "" {
		return "", fmt.Errorf("%w: listing URL and bundle ID are required", domain.ErrInvalidInput)
	}

	listing, err := s.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return "", err
	}

	indexBlob, bundle, err := s.loadBundle(ctx, user.ID, bundleID)
	if err != nil {
		return "", err
	}

	res, err := s.admission.Admit(ctx, user, domain.JobKindGenerateCoverLetter)
	if err != nil {
		return "", err
	}

	job := domain.NewJob(domain.JobKindGenerateCoverLetter, user.ID)
	if err := s.jobs.Create(ctx, job); err != nil {
		_ = s.admission.Release(ctx, res, false)
		return "", fmt.Errorf("create job: %w", err)
	}

	err = s.pool.Submit("generate-letter", func(taskCtx context.Context) {
		s.runGeneration(taskCtx, job.ID, res, listing, indexBlob, bundle)
	})
	if err != nil {
		_ = s.jobs.Fail(ctx, job.ID, domain.FailedStatus(domain.StatusStarting, err))
		_ = s.admission.Release(ctx, res, false)
		return "", err
	}

	return job.ID, nil
}

// loadBundle fetches the two bundle artifacts from blob storage and
// checks that the record matches the requested identity and owner.
func (s *LetterService) loadBundle(ctx context.Context, ownerID, bundleID string) ([]byte, *domain.Bundle, error) {
	indexBlob, err := s.blobs.Get(ctx, domain.IndexKey(bundleID))
	if err != nil {
		return nil, nil, fmt.Errorf("indexed resume %s: %w", bundleID, err)
	}
	bundleBlob, err := s.blobs.Get(ctx, domain.BundleKey(bundleID))
	if err != nil {
		return nil, nil, fmt.Errorf("indexed resume %s: %w", bundleID, err)
	}

	bundle, err := domain.DecodeBundle(bundleBlob)
	if err != nil {
		return nil, nil, err
	}
	if bundle.ID != bundleID {
		return nil, nil, domain.ErrBundleMismatch
	}
	if bundle.OwnerID != ownerID {
		// Foreign bundles are indistinguishable from missing ones.
		return nil, nil, domain.ErrNotFound
	}
	return indexBlob, bundle, nil
}

// runGeneration is the job body; faults are recorded as the terminal
// status and roll back the quota reservation.
func (s *LetterService) runGeneration(ctx context.Context, jobID string, res *domain.Reservation, listing *domain.Listing, indexBlob []byte, bundle *domain.Bundle) {
	step := domain.StatusStarting

	fail := func(err error) {
		if ferr := s.jobs.Fail(ctx, jobID, domain.FailedStatus(step, err)); ferr != nil {
			s.logger.Error("failed to record job failure", "job_id", jobID, "error", ferr)
		}
		_ = s.admission.Release(ctx, res, false)
		s.logger.Error("generation job failed", "job_id", jobID, "step", step, "error", err)
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

	advance("Deserializing indexed resume")
	ix, err := vecindex.Deserialize(indexBlob)
	if err != nil {
		fail(err)
		return
	}
	if ix.Count() != len(bundle.Chunks) {
		fail(fmt.Errorf("%w: index holds %d vectors for %d chunks", domain.ErrBundleCorrupt, ix.Count(), len(bundle.Chunks)))
		return
	}

	advance("Retrieving relevant resume data")
	retrieved, err := s.retriever.RetrieveMany(ctx, ix, bundle.Chunks, []Query{
		{Text: listing.Description, K: descriptionK},
		{Text: "name", K: detailK},
		{Text: "contact details", K: detailK},
		{Text: "location", K: detailK},
	})
	if err != nil {
		fail(err)
		return
	}
	evidence := retrieved[0]
	applicant := append(append(retrieved[1], retrieved[2]...), retrieved[3]...)

	advance("Constructing prompt")
	req := buildLetterPrompt(listing, evidence, applicant, time.Now())

	advance("Writing cover letter")
	letter, err := s.writer.Write(ctx, req)
	if err != nil {
		fail(err)
		return
	}

	advance("Uploading result")
	data, err := marshalLetter(letter)
	if err != nil {
		fail(err)
		return
	}
	if err := s.blobs.Put(ctx, domain.LetterKey(jobID), data); err != nil {
		fail(fmt.Errorf("upload letter: %w", err))
		return
	}

	if err := s.jobs.Complete(ctx, jobID); err != nil {
		s.logger.Error("failed to record completion", "job_id", jobID, "error", err)
	}
	_ = s.admission.Release(ctx, res, true)

	s.logger.Info("generation job completed", "job_id", jobID, "company", listing.Company)
}

// Result returns the generated letter JSON for a completed job owned by
// the user.
func (s *LetterService) Result(ctx context.Context, ownerID, jobID string) ([]byte, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID || job.Kind != domain.JobKindGenerateCoverLetter {
		return nil, domain.ErrNotFound
	}
	if job.Status != domain.StatusCompleted {
		return nil, domain.ErrNotFound
	}
	return s.blobs.Get(ctx, domain.LetterKey(jobID))
}
