package analytics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/utils"
)

// FoodChartHandler serves the signed-in user's per-food calorie totals.
func FoodChartHandler(w http.ResponseWriter, r *http.Request) {
	records, ok := loadOwnRecords(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AggregateByFood(records)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// DailyChartHandler serves the signed-in user's per-day calorie/visit series.
func DailyChartHandler(w http.ResponseWriter, r *http.Request) {
	records, ok := loadOwnRecords(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AggregateByDay(records, time.Local)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func loadOwnRecords(w http.ResponseWriter, r *http.Request) ([]history.Record, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return nil, false
	}

	var records []history.Record
	err := db.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&records).Error
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return nil, false
	}
	return records, true
}
