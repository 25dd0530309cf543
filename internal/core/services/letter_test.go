package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/memory"
	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven/mocks"
	"github.com/lettersmith/lettersmith-core/internal/vecindex"
	"github.com/lettersmith/lettersmith-core/internal/worker"
)

type letterFixture struct {
	svc       *LetterService
	jobs      *memory.JobStore
	blobs     *memory.BlobStore
	embedder  *mocks.MockEmbeddingService
	fetcher   *mocks.MockListingFetcher
	writer    *mocks.MockLetterWriter
	admission *AdmissionService
	pool      *worker.Pool
}

func newLetterFixture(t *testing.T) *letterFixture {
	t.Helper()

	f := &letterFixture{
		jobs:     memory.NewJobStore(),
		blobs:    memory.NewBlobStore(),
		embedder: mocks.NewMockEmbeddingService(),
		fetcher:  mocks.NewMockListingFetcher(),
		writer:   mocks.NewMockLetterWriter(),
	}
	f.admission = NewAdmissionService(memory.NewReservationStore(), testTiers(), testLogger())
	f.pool = worker.New(worker.Config{Workers: 1, QueueSize: 4, Logger: testLogger()})
	f.pool.Start(context.Background())
	t.Cleanup(f.pool.Stop)

	f.svc = NewLetterService(LetterServiceConfig{
		Jobs:      f.jobs,
		Blobs:     f.blobs,
		Fetcher:   f.fetcher,
		Writer:    f.writer,
		Retriever: NewRetriever(f.embedder),
		Admission: f.admission,
		Pool:      f.pool,
		Logger:    testLogger(),
	})
	return f
}

// storeBundle builds and uploads a valid index/bundle artifact pair.
func (f *letterFixture) storeBundle(t *testing.T, bundleID, ownerID string, chunks []string) {
	t.Helper()
	ctx := context.Background()

	vectors, err := f.embedder.Embed(ctx, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ix, err := vecindex.Build(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	indexBlob, err := ix.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bundle := &domain.Bundle{
		ID:        bundleID,
		OwnerID:   ownerID,
		Chunks:    chunks,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := bundle.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.blobs.Put(ctx, domain.IndexKey(bundleID), indexBlob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.blobs.Put(ctx, domain.BundleKey(bundleID), encoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

var testChunks = []string{
	"Jane Doe jane@example.com Amsterdam",
	"Led the platform team of six engineers",
	"Shipped the billing system in Go",
	"Maintained PostgreSQL clusters",
}

func TestStartGeneration_CompletesAndStoresLetter(t *testing.T) {
	f := newLetterFixture(t)
	ctx := context.Background()
	user := basicUser()

	f.storeBundle(t, "bundle-1", user.ID, testChunks)

	jobID, err := f.svc.StartGeneration(ctx, user, "https://jobs.example.com/1", "bundle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := waitTerminal(t, f.jobs, jobID)
	if job.Status != domain.StatusCompleted {
		t.Fatalf("expected Completed, got %q", job.Status)
	}

	data, err := f.svc.Result(ctx, user.ID, jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var letter domain.Letter
	if err := json.Unmarshal(data, &letter); err != nil {
		t.Fatalf("stored letter is not valid JSON: %v", err)
	}
	if letter.Salutation == "" {
		t.Error("expected a salutation in the stored letter")
	}

	// One prompt reached the writer and it mentions the listing.
	if len(f.writer.Requests) != 1 {
		t.Fatalf("expected 1 writer call, got %d", len(f.writer.Requests))
	}
	if f.writer.Requests[0].Prompt == "" || f.writer.Requests[0].System == "" {
		t.Error("expected non-empty prompt pair")
	}
}

func TestStartGeneration_MissingInputs(t *testing.T) {
	f := newLetterFixture(t)

	_, err := f.svc.StartGeneration(context.Background(), basicUser(), "", "bundle-1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	_, err = f.svc.StartGeneration(context.Background(), basicUser(), "https://jobs.example.com/1", " ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStartGeneration_UnreachableListing(t *testing.T) {
	f := newLetterFixture(t)
	f.fetcher.Err = domain.ErrListingUnreachable

	_, err := f.svc.StartGeneration(context.Background(), basicUser(), "https://jobs.example.com/1", "bundle-1")
	if !errors.Is(err, domain.ErrListingUnreachable) {
		t.Errorf("expected ErrListingUnreachable, got %v", err)
	}
}

func TestStartGeneration_UnknownBundle(t *testing.T) {
	f := newLetterFixture(t)

	_, err := f.svc.StartGeneration(context.Background(), basicUser(), "https://jobs.example.com/1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStartGeneration_ForeignBundleLooksMissing(t *testing.T) {
	f := newLetterFixture(t)
	f.storeBundle(t, "bundle-1", "someone-else", testChunks)

	_, err := f.svc.StartGeneration(context.Background(), basicUser(), "https://jobs.example.com/1", "bundle-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStartGeneration_BundleIDMismatch(t *testing.T) {
	f := newLetterFixture(t)
	user := basicUser()
	f.storeBundle(t, "bundle-1", user.ID, testChunks)
	ctx := context.Background()

	// Cross-wire the artifacts under a different key.
	indexBlob, _ := f.blobs.Get(ctx, domain.IndexKey("bundle-1"))
	bundleBlob, _ := f.blobs.Get(ctx, domain.BundleKey("bundle-1"))
	_ = f.blobs.Put(ctx, domain.IndexKey("bundle-2"), indexBlob)
	_ = f.blobs.Put(ctx, domain.BundleKey("bundle-2"), bundleBlob)

	_, err := f.svc.StartGeneration(ctx, user, "https://jobs.example.com/1", "bundle-2")
	if !errors.Is(err, domain.ErrBundleMismatch) {
		t.Errorf("expected ErrBundleMismatch, got %v", err)
	}
}

func TestStartGeneration_CorruptBundle(t *testing.T) {
	f := newLetterFixture(t)
	user := basicUser()
	ctx := context.Background()

	_ = f.blobs.Put(ctx, domain.IndexKey("bad"), []byte("not an index"))
	_ = f.blobs.Put(ctx, domain.BundleKey("bad"), []byte("not gzip"))

	_, err := f.svc.StartGeneration(ctx, user, "https://jobs.example.com/1", "bad")
	if !errors.Is(err, domain.ErrBundleCorrupt) {
		t.Errorf("expected ErrBundleCorrupt, got %v", err)
	}
}

func TestStartGeneration_CorruptIndexFailsJob(t *testing.T) {
	f := newLetterFixture(t)
	user := basicUser()
	ctx := context.Background()

	f.storeBundle(t, "bundle-1", user.ID, testChunks)
	// Truncate the index artifact; the bundle record stays valid, so the
	// fault surfaces inside the job body.
	indexBlob, _ := f.blobs.Get(ctx, domain.IndexKey("bundle-1"))
	_ = f.blobs.Put(ctx, domain.IndexKey("bundle-1"), indexBlob[:8])

	jobID, err := f.svc.StartGeneration(ctx, user, "https://jobs.example.com/1", "bundle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := waitTerminal(t, f.jobs, jobID)
	if !job.Failed() {
		t.Errorf("expected failed status, got %q", job.Status)
	}
}

func TestStartGeneration_WriterFailureFailsJob(t *testing.T) {
	f := newLetterFixture(t)
	user := basicUser()
	f.storeBundle(t, "bundle-1", user.ID, testChunks)
	f.writer.Err = errors.New("model unavailable")

	jobID, err := f.svc.StartGeneration(context.Background(), user, "https://jobs.example.com/1", "bundle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := waitTerminal(t, f.jobs, jobID)
	if !job.Failed() {
		t.Errorf("expected failed status, got %q", job.Status)
	}
}

func TestResult_PendingJobLooksMissing(t *testing.T) {
	f := newLetterFixture(t)
	user := basicUser()
	ctx := context.Background()

	job := domain.NewJob(domain.JobKindGenerateCoverLetter, user.ID)
	if err := f.jobs.Create(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Result(ctx, user.ID, job.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for pending job, got %v", err)
	}
}

func TestResult_ForeignJobLooksMissing(t *testing.T) {
	f := newLetterFixture(t)
	ctx := context.Background()

	job := domain.NewJob(domain.JobKindGenerateCoverLetter, "someone-else")
	if err := f.jobs.Create(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.jobs.Complete(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Result(ctx, "user-1", job.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign job, got %v", err)
	}
}
