package auth

import (
	"log"

	"github.com/NutriVision/NV-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "accounts"); err != nil {
		log.Fatal("Failed to ensure schema accounts: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &Session{}, &Profile{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
