package session

import "time"

// UserSession is one heartbeat telemetry row. Rows are never explicitly
// closed; duration is reconstructed from login_at/last_active_at.
type UserSession struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index;not null" json:"user_id"`
	LoginAt         time.Time `json:"login_at"`
	LastActiveAt    time.Time `json:"last_active_at"`
	DurationMinutes int       `json:"duration_minutes"`
	PagesVisited    int       `json:"pages_visited"`
}

func (UserSession) TableName() string { return "tracking.user_sessions" }
