package auth

import (
	"errors"
	"log"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadOrCreateProfile fetches the profile for userID, inserting a fresh
// role=user row on first authentication. Any failure other than "not found"
// falls back to an in-memory placeholder so a broken profile fetch can never
// block sign-in. The returned profile is always usable.
func LoadOrCreateProfile(userID, email string) *Profile {
	var profile Profile

	err := db.DB.First(&profile, "id = ?", userID).Error
	if err == nil {
		return &profile
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = Profile{
			ID:        userID,
			Email:     email,
			Role:      "user",
			CreatedAt: time.Now(),
		}
		// Two logins can race here; DoNothing keeps the create idempotent.
		createErr := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error
		if createErr == nil {
			// Re-read in case a concurrent insert won.
			if readErr := db.DB.First(&profile, "id = ?", userID).Error; readErr == nil {
				return &profile
			}
			return &profile
		}
		log.Printf("[auth] profile create failed for %s: %v", userID, createErr)
	} else {
		log.Printf("[auth] profile fetch failed for %s: %v", userID, err)
	}

	// Placeholder keeps the caller unblocked; not persisted.
	return &Profile{ID: userID, Role: "user"}
}
