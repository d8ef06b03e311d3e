package model

import "time"

// User is an account for the optional API server. The local TUI never
// touches users. The hash round-trips through the store, so API
// responses must go through Sanitized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sanitized returns a copy safe to put in an API response
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
