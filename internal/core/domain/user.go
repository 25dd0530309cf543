package domain

import "time"

// TierName identifies a subscription tier.
type TierName string

const (
	TierBasic   TierName = "Basic"
	TierPremium TierName = "Premium"
	TierAdmin   TierName = "Admin"
)

// Unlimited disables a per-hour quota check when used as a tier limit.
const Unlimited = -1

// Tier holds the per-hour admission limits and upload limits for a
// subscription level.
type Tier struct {
	// Name is the tier identifier
	Name TierName `yaml:"name"`

	// IndexJobsPerHour limits IndexResume admissions over a rolling hour.
	// Unlimited (-1) bypasses the check.
	IndexJobsPerHour int `yaml:"index_jobs_per_hour"`

	// LetterJobsPerHour limits GenerateCoverLetter admissions over a
	// rolling hour. Unlimited (-1) bypasses the check.
	LetterJobsPerHour int `yaml:"letter_jobs_per_hour"`

	// MaxResumeBytes is the largest accepted resume upload. Zero means
	// no limit.
	MaxResumeBytes int64 `yaml:"max_resume_bytes"`
}

// Limit returns the per-hour admission limit for a job kind.
func (t Tier) Limit(kind JobKind) int {
	switch kind {
	case JobKindIndexResume:
		return t.IndexJobsPerHour
	case JobKindGenerateCoverLetter:
		return t.LetterJobsPerHour
	default:
		return 0
	}
}

// DefaultTiers returns the built-in subscription levels.
func DefaultTiers() map[TierName]Tier {
	return map[TierName]Tier{
		TierBasic: {
			Name:              TierBasic,
			IndexJobsPerHour:  5,
			LetterJobsPerHour: 20,
			MaxResumeBytes:    2 << 20,
		},
		TierPremium: {
			Name:              TierPremium,
			IndexJobsPerHour:  25,
			LetterJobsPerHour: 100,
			MaxResumeBytes:    10 << 20,
		},
		TierAdmin: {
			Name:              TierAdmin,
			IndexJobsPerHour:  Unlimited,
			LetterJobsPerHour: Unlimited,
			MaxResumeBytes:    0,
		},
	}
}

// User represents an account that owns resumes, jobs and letters.
type User struct {
	// ID is the unique identifier for this user
	ID string `json:"id"`

	// Email is the login identifier
	Email string `json:"email"`

	// Name is the display name
	Name string `json:"name"`

	// PasswordHash is the bcrypt hash (never serialized to clients)
	PasswordHash string `json:"-"`

	// Tier is the subscription level governing quotas
	Tier TierName `json:"tier"`

	// Active indicates whether the account may authenticate
	Active bool `json:"active"`

	// CreatedAt is when the account was created
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user is on the administrative tier.
func (u *User) IsAdmin() bool {
	return u.Tier == TierAdmin
}
