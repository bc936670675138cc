package session

import (
	"time"

	"gorm.io/gorm"
)

// Store persists heartbeat rows. Split out as an interface so trackers can be
// exercised without a database.
type Store interface {
	Insert(s *UserSession) error
	Heartbeat(id string, lastActive time.Time, minutes, pages int) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Insert(us *UserSession) error {
	return s.db.Create(us).Error
}

func (s *gormStore) Heartbeat(id string, lastActive time.Time, minutes, pages int) error {
	return s.db.Model(&UserSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_active_at":   lastActive,
		"duration_minutes": minutes,
		"pages_visited":    pages,
	}).Error
}
