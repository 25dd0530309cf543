package postgres

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ReservationStore = (*ReservationStore)(nil)

// ReservationStore implements driven.ReservationStore using PostgreSQL.
// Reserve serializes concurrent admissions for the same (user, kind) key
// with a transaction-scoped advisory lock, so the count-then-insert pair
// cannot interleave.
type ReservationStore struct {
	db *DB
}

// NewReservationStore creates a new ReservationStore
func NewReservationStore(db *DB) *ReservationStore {
	return &ReservationStore{db: db}
}

// hashQuotaKey converts a (user, kind) key to a 64-bit integer for
// PostgreSQL advisory locks. Uses FNV-1a for well-distributed values.
func hashQuotaKey(userID string, kind domain.JobKind) int64 {
	h := fnv.New64a()
	h.Write([]byte("lettersmith:quota:" + userID + ":" + string(kind)))
	return int64(h.Sum64())
}

// Reserve atomically checks the live reservation count against limit and
// inserts the reservation if capacity remains.
func (s *ReservationStore) Reserve(ctx context.Context, res *domain.Reservation, limit int) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		lockID := hashQuotaKey(res.UserID, res.Kind)
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockID); err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err := tx.ExecContext(ctx,
			`DELETE FROM reservations WHERE user_id = $1 AND job_type = $2 AND expires_at <= $3`,
			res.UserID, string(res.Kind), now,
		)
		if err != nil {
			return err
		}

		if limit != domain.Unlimited {
			var count int
			err = tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND job_type = $2`,
				res.UserID, string(res.Kind),
			).Scan(&count)
			if err != nil {
				return err
			}
			if count >= limit {
				return domain.ErrQuotaExceeded
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO reservations (id, user_id, job_type, expires_at) VALUES ($1, $2, $3, $4)`,
			res.ID, res.UserID, string(res.Kind), res.ExpiresAt,
		)
		return err
	})
}

// Remove deletes a reservation. Removing an already-expired or missing
// reservation is not an error.
func (s *ReservationStore) Remove(ctx context.Context, res *domain.Reservation) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, res.ID)
	return err
}

// Count returns the number of live reservations for (user, kind)
func (s *ReservationStore) Count(ctx context.Context, userID string, kind domain.JobKind) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND job_type = $2 AND expires_at > $3`,
		userID, string(kind), time.Now().UTC(),
	).Scan(&count)
	return count, err
}
