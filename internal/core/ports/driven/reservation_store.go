package driven

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// ReservationStore tracks provisional quota slots per (user, job kind)
// over a sliding window. Reserve must perform the limit check and the
// append as one atomic step per (user, kind) key so two concurrent
// requests cannot both pass admission when only one slot remains.
type ReservationStore interface {
	// Reserve drops expired reservations, compares the live count for
	// (res.UserID, res.Kind) against limit, and appends res if capacity
	// remains. Returns domain.ErrQuotaExceeded at or over the limit.
	// A limit of domain.Unlimited bypasses the check.
	Reserve(ctx context.Context, res *domain.Reservation, limit int) error

	// Remove deletes a reservation (quota rollback for a failed job).
	// Removing an already-expired reservation is not an error.
	Remove(ctx context.Context, res *domain.Reservation) error

	// Count returns the number of live reservations for (user, kind).
	Count(ctx context.Context, userID string, kind domain.JobKind) (int, error)
}
