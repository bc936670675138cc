package history

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/provider"
	"github.com/NutriVision/NV-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Save persists an analysis record for its owner. Best-effort: the primary
// operation (returning the analysis to the user) must not fail because the
// history write did.
func Save(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := db.DB.Create(rec).Error; err != nil {
		provider.LogError("history", "save", err)
	}
}

// Recorder adapts Save for handlers that take their history sink as an
// injected collaborator.
type Recorder struct{}

func (Recorder) Save(rec *Record) { Save(rec) }

func ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}

	var records []Record
	err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing record id", http.StatusBadRequest)
		return
	}

	// Owner-scoped delete; another user's record id is a no-op.
	result := db.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&Record{})
	if result.Error != nil {
		http.Error(w, "Failed to delete record", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Record deleted")
}
