package utils

import "time"

// SessionData is the subset of an auth session that middleware needs.
type SessionData struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}
