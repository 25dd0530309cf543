package blob

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BlobStore = (*BoltStore)(nil)

var bucketBlobs = []byte("blobs")

// BoltStore implements driven.BlobStore on a single bbolt file. Keys are
// opaque strings; namespacing via key prefixes replaces buckets-per-kind.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the blob database at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init blob store: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Put stores data under key, overwriting any existing value
func (s *BoltStore) Put(ctx context.Context, key string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put([]byte(key), data)
	})
}

// Get retrieves the blob stored under key
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBlobs).Get([]byte(key))
		if data == nil {
			return domain.ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a blob. Deleting a missing key is not an error.
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlobs).Delete([]byte(key))
	})
}

// Close closes the underlying database file
func (s *BoltStore) Close() error {
	return s.db.Close()
}
