package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ReservationStore = (*ReservationStore)(nil)

const quotaPrefix = "lettersmith:quota:"

// ReservationStore implements driven.ReservationStore using Redis sorted
// sets. Each (user, kind) pair maps to one ZSET whose members are
// reservation IDs scored by expiry time, so pruning is a range delete and
// the live count is the cardinality.
type ReservationStore struct {
	client *redis.Client
}

// NewReservationStore creates a new Redis-backed ReservationStore
func NewReservationStore(client *redis.Client) *ReservationStore {
	return &ReservationStore{client: client}
}

func quotaKey(userID string, kind domain.JobKind) string {
	return quotaPrefix + userID + ":" + string(kind)
}

// reserveScript atomically prunes expired reservations, checks the live
// count against the limit, and adds the new reservation. A negative limit
// means unlimited. Returns 1 on success, 0 when the quota is exhausted.
var reserveScript = redis.NewScript(`
	redis.call("zremrangebyscore", KEYS[1], "-inf", ARGV[1])
	local limit = tonumber(ARGV[2])
	if limit >= 0 and redis.call("zcard", KEYS[1]) >= limit then
		return 0
	end
	redis.call("zadd", KEYS[1], ARGV[3], ARGV[4])
	redis.call("expire", KEYS[1], ARGV[5])
	return 1
`)

// Reserve atomically checks capacity and records the reservation
func (s *ReservationStore) Reserve(ctx context.Context, res *domain.Reservation, limit int) error {
	key := quotaKey(res.UserID, res.Kind)
	now := time.Now().UTC()

	// Keep the key alive slightly past the newest reservation's expiry.
	keyTTL := int64(time.Until(res.ExpiresAt).Seconds()) + 60

	result, err := reserveScript.Run(ctx, s.client, []string{key},
		now.Unix(),
		limit,
		res.ExpiresAt.Unix(),
		res.ID,
		keyTTL,
	).Result()
	if err != nil {
		return fmt.Errorf("reserve quota slot: %w", err)
	}

	if result.(int64) == 0 {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Remove deletes a reservation. Removing an expired or missing
// reservation is not an error.
func (s *ReservationStore) Remove(ctx context.Context, res *domain.Reservation) error {
	key := quotaKey(res.UserID, res.Kind)
	if err := s.client.ZRem(ctx, key, res.ID).Err(); err != nil {
		return fmt.Errorf("remove reservation: %w", err)
	}
	return nil
}

// Count returns the number of live reservations for (user, kind)
func (s *ReservationStore) Count(ctx context.Context, userID string, kind domain.JobKind) (int, error) {
	key := quotaKey(userID, kind)
	now := time.Now().UTC()

	count, err := s.client.ZCount(ctx, key, fmt.Sprintf("(%d", now.Unix()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return int(count), nil
}
