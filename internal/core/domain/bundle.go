package domain

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Bundle is the durable unit produced by a completed indexing job: the
// ordered overlapping-chunk strings plus the owning identity. The
// serialized vector index is stored as a sibling artifact. A bundle is
// write-once, read-many; there is no update operation.
type Bundle struct {
	// ID is the indexing job's identity, reused as the bundle identity
	ID string `json:"uuid"`

	// OwnerID is the user that indexed the resume
	OwnerID string `json:"owner"`

	// Chunks is the ordered sequence of overlapping-chunk strings,
	// index-aligned with the vectors in the sibling index artifact
	Chunks []string `json:"chunks"`

	// CreatedAt is when the indexing job completed
	CreatedAt time.Time `json:"created_at"`
}

// Encode serializes the bundle to gzip-compressed JSON, the format used
// for the durable chunk artifact.
func (b *Bundle) Encode() ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(b); err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBundle reconstructs a bundle from its gzip-compressed JSON form.
// A blob that does not decompress or parse is reported as corrupt.
func DecodeBundle(data []byte) (*Bundle, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleCorrupt, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleCorrupt, err)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleCorrupt, err)
	}
	return &b, nil
}

// IndexKey returns the blob key for a bundle's serialized vector index.
func IndexKey(bundleID string) string {
	return "resumes/" + bundleID + ".idx"
}

// BundleKey returns the blob key for a bundle's chunk record.
func BundleKey(bundleID string) string {
	return "resumes/" + bundleID + ".json.gz"
}

// LetterKey returns the blob key for a generated letter result.
func LetterKey(jobID string) string {
	return "letters/" + jobID + ".json"
}
