package driven

import "context"

// BlobStore persists opaque artifacts: serialized vector indexes,
// compressed chunk bundles and generated letter results. Best-effort
// durability; a failed Put fails the enclosing job.
type BlobStore interface {
	// Put stores data under key, overwriting any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the blob stored under key.
	// Returns domain.ErrNotFound for an unknown key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
