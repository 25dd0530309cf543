package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// AdmissionService gates job creation per user per job kind against the
// subscription tier's hourly limit. Admission takes a provisional
// reservation; the job body must release it exactly once when the job
// reaches a terminal state. A failed job's reservation is removed so
// the attempt does not consume quota.
type AdmissionService struct {
	reservations driven.ReservationStore
	tiers        map[domain.TierName]domain.Tier
	logger       *slog.Logger
}

// NewAdmissionService creates an admission controller over the given
// reservation store and tier table.
func NewAdmissionService(reservations driven.ReservationStore, tiers map[domain.TierName]domain.Tier, logger *slog.Logger) *AdmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	if tiers == nil {
		tiers = domain.DefaultTiers()
	}
	return &AdmissionService{
		reservations: reservations,
		tiers:        tiers,
		logger:       logger,
	}
}

// Tier resolves a user's tier, falling back to Basic for unknown names.
func (s *AdmissionService) Tier(user *domain.User) domain.Tier {
	tier, ok := s.tiers[user.Tier]
	if !ok {
		return s.tiers[domain.TierBasic]
	}
	return tier
}

// Admit checks the user's quota for the job kind and takes a
// reservation expiring one quota window from now. Returns
// domain.ErrQuotaExceeded without reserving when the user is at or over
// the tier limit.
func (s *AdmissionService) Admit(ctx context.Context, user *domain.User, kind domain.JobKind) (*domain.Reservation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidInput, kind)
	}

	limit := s.Tier(user).Limit(kind)
	res := domain.NewReservation(user.ID, kind)

	if err := s.reservations.Reserve(ctx, res, limit); err != nil {
		if err == domain.ErrQuotaExceeded {
			s.logger.Info("admission rejected",
				"user_id", user.ID,
				"kind", kind,
				"limit", limit,
			)
		}
		return nil, err
	}

	return res, nil
}

// Release consumes a reservation when its job reaches a terminal state.
// On failure the reservation is removed, restoring quota as if the
// attempt never happened; on success it is left to expire naturally.
func (s *AdmissionService) Release(ctx context.Context, res *domain.Reservation, success bool) error {
	if res == nil {
		return nil
	}
	if success {
		return nil
	}

	if err := s.reservations.Remove(ctx, res); err != nil {
		s.logger.Error("quota rollback failed",
			"user_id", res.UserID,
			"kind", res.Kind,
			"error", err,
		)
		return err
	}
	return nil
}
