package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// JobKind identifies the type of background job
type JobKind string

const (
	// JobKindIndexResume indexes an uploaded resume into a retrieval bundle
	JobKindIndexResume JobKind = "IndexResume"
	// JobKindGenerateCoverLetter generates a cover letter from a listing and a bundle
	JobKindGenerateCoverLetter JobKind = "GenerateCoverLetter"
)

// Valid reports whether the kind is one of the known job kinds.
func (k JobKind) Valid() bool {
	return k == JobKindIndexResume || k == JobKindGenerateCoverLetter
}

// Job status sentinels. Progress statuses between Starting and a
// terminal state are free text and should be treated as opaque.
const (
	StatusStarting  = "Starting"
	StatusCompleted = "Completed"

	// FailedPrefix marks a terminal failure status.
	FailedPrefix = "Failed"
)

// FailedStatus builds the terminal failure status for a job, embedding
// the step that was in progress when the fault occurred.
func FailedStatus(lastStep string, err error) string {
	return fmt.Sprintf("%s at %q: %v", FailedPrefix, lastStep, err)
}

// Job represents one asynchronous unit of work. The record is created
// before the body starts executing and is visible to status queries for
// its whole lifetime; it is never deleted by this subsystem.
type Job struct {
	// ID is the unique identifier for this job
	ID string `json:"id"`

	// OwnerID is the user that created the job
	OwnerID string `json:"owner_id"`

	// Kind identifies what kind of job this is
	Kind JobKind `json:"kind"`

	// Status is the latest human-readable progress string. Each update
	// is a full overwrite; clients only ever see the latest value.
	Status string `json:"status"`

	// CreatedAt is when the job record was created
	CreatedAt time.Time `json:"created_at"`

	// FinishedAt is when the job reached a terminal state (nil until then)
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a job record in the Starting state.
func NewJob(kind JobKind, ownerID string) *Job {
	return &Job{
		ID:        GenerateID(),
		OwnerID:   ownerID,
		Kind:      kind,
		Status:    StatusStarting,
		CreatedAt: time.Now().UTC(),
	}
}

// IsTerminal reports whether the job has reached Completed or a failure
// status. Terminal jobs are never transitioned again.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || strings.HasPrefix(j.Status, FailedPrefix)
}

// Failed reports whether the job terminated with a failure status.
func (j *Job) Failed() bool {
	return strings.HasPrefix(j.Status, FailedPrefix)
}
