package models

import "time"

// CalendarCredential is the OAuth credential set for one therapist's
// external calendar. Exactly one live row exists per owner; the store
// upserts on OwnerID.
type CalendarCredential struct {
	OwnerID      string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
	UpdatedAt    time.Time
}

// ExpiresWithin reports whether the access token is already expired, or
// expires inside the given leeway. A zero Expiry means the provider issued
// a token with no known expiry; it is treated as live.
func (c *CalendarCredential) ExpiresWithin(leeway time.Duration, now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !c.Expiry.After(now.Add(leeway))
}
