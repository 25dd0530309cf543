package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ReservationStore = (*ReservationStore)(nil)

// ReservationStore implements driven.ReservationStore with per-key
// reservation lists. A single mutex serializes the check-and-append so
// two concurrent requests cannot both take the last slot.
type ReservationStore struct {
	mu    sync.Mutex
	byKey map[string][]*domain.Reservation
}

// NewReservationStore creates an empty in-memory reservation store.
func NewReservationStore() *ReservationStore {
	return &ReservationStore{byKey: make(map[string][]*domain.Reservation)}
}

func key(userID string, kind domain.JobKind) string {
	return userID + "/" + string(kind)
}

// Reserve atomically prunes expired entries, checks the limit and
// appends the reservation.
func (s *ReservationStore) Reserve(ctx context.Context, res *domain.Reservation, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(res.UserID, res.Kind)
	live := prune(s.byKey[k])

	if limit != domain.Unlimited && len(live) >= limit {
		s.byKey[k] = live
		return domain.ErrQuotaExceeded
	}

	cp := *res
	s.byKey[k] = append(live, &cp)
	return nil
}

// Remove deletes a reservation by ID (rollback for a failed job).
func (s *ReservationStore) Remove(ctx context.Context, res *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(res.UserID, res.Kind)
	entries := s.byKey[k]
	kept := entries[:0]
	for _, r := range entries {
		if r.ID != res.ID {
			kept = append(kept, r)
		}
	}
	s.byKey[k] = kept
	return nil
}

// Count returns the number of live reservations for (user, kind).
func (s *ReservationStore) Count(ctx context.Context, userID string, kind domain.JobKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, kind)
	live := prune(s.byKey[k])
	s.byKey[k] = live
	return len(live), nil
}

// prune drops reservations whose expiry marker has passed.
func prune(entries []*domain.Reservation) []*domain.Reservation {
	now := time.Now()
	kept := entries[:0]
	for _, r := range entries {
		if r.ExpiresAt.After(now) {
			kept = append(kept, r)
		}
	}
	return kept
}
