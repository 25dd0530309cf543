package domain

import "time"

// QuotaWindow is the sliding window over which per-user admission limits
// are enforced.
const QuotaWindow = time.Hour

// Reservation is a provisional quota slot taken at admission time. The
// expiry is stamped one hour in the future and used as an expiry marker:
// a successful job leaves the reservation to lapse naturally, a failed
// job removes it so the attempt does not consume quota.
type Reservation struct {
	// ID uniquely identifies the reservation within its window
	ID string

	// UserID is the reserving user
	UserID string

	// Kind is the job kind the slot was reserved for
	Kind JobKind

	// ExpiresAt is admission time plus QuotaWindow
	ExpiresAt time.Time
}

// NewReservation creates a reservation expiring one quota window from now.
func NewReservation(userID string, kind JobKind) *Reservation {
	return &Reservation{
		ID:        GenerateID(),
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: time.Now().UTC().Add(QuotaWindow),
	}
}
