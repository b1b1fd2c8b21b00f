package domain

import "time"

// User is the signed-in user as far as the client knows it
type User struct {
	ID        string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the user's credential has a known expiry in the past
func (u User) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && now.After(u.ExpiresAt)
}
