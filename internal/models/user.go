package models

import "time"

// UserProfile holds onboarding answers for one authenticated user. The user id
// is the auth provider's opaque subject, so the profile is keyed by it directly
// instead of a sequence key.
type UserProfile struct {
	UserID string `boltholdKey:"UserID"`

	Moods           []string
	Genres          []string
	FavoriteAnime   []string
	ExperienceLevel string
	DislikedGenres  []string
	DislikedTags    []string
	Archetypes      []string

	PhoneVerified  bool
	OnboardingDone bool
	Admin          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PhoneVerification is an ephemeral record for one SMS code challenge. Only
// the sha256 of the code is stored. Expired records are purged by a cron job.
type PhoneVerification struct {
	ID          string `boltholdKey:"ID"` // uuid
	UserID      string `boltholdIndex:"UserID"`
	PhoneNumber string
	CodeHash    string
	Attempts    int
	Verified    bool
	ExpiresAt   time.Time `boltholdIndex:"ExpiresAt"`
	CreatedAt   time.Time
}

// Expired reports whether the challenge can no longer be answered
func (v *PhoneVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
