package nutrition

import (
	"log"

	"github.com/NutriVision/NV-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "tracking"); err != nil {
		log.Fatal("Failed to ensure schema tracking: ", err)
	}

	if err := db.DB.AutoMigrate(&FoodFact{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
