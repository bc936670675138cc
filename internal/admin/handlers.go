package admin

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"time"

	"github.com/NutriVision/NV-Backend/internal/analytics"
	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/contact"
	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

type userOverview struct {
	auth.Profile
	AnalysisCount int        `json:"analysis_count"`
	TotalCalories float64    `json:"total_calories"`
	SessionCount  int        `json:"session_count"`
	TotalMinutes  int        `json:"total_minutes"`
	LastActiveAt  *time.Time `json:"last_active_at"`
}

// UsersHandler lists every profile with per-user usage stats for the admin
// users table.
func UsersHandler(w http.ResponseWriter, r *http.Request) {
	var profiles []auth.Profile
	if err := db.DB.Order("created_at DESC").Find(&profiles).Error; err != nil {
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}

	var sessions []session.UserSession
	db.DB.Find(&sessions)
	var records []history.Record
	db.DB.Find(&records)

	analysisCount := make(map[string]int)
	calorieSum := make(map[string]float64)
	for _, rec := range records {
		analysisCount[rec.UserID]++
		calorieSum[rec.UserID] += rec.TotalCalories
	}
	sessionCount := make(map[string]int)
	minuteSum := make(map[string]int)
	lastActive := make(map[string]time.Time)
	for _, s := range sessions {
		sessionCount[s.UserID]++
		minuteSum[s.UserID] += s.DurationMinutes
		active := s.LastActiveAt
		if active.IsZero() {
			active = s.LoginAt
		}
		if active.After(lastActive[s.UserID]) {
			lastActive[s.UserID] = active
		}
	}

	out := make([]userOverview, 0, len(profiles))
	for _, p := range profiles {
		ov := userOverview{
			Profile:       p,
			AnalysisCount: analysisCount[p.ID],
			TotalCalories: analytics.Round1(calorieSum[p.ID]),
			SessionCount:  sessionCount[p.ID],
			TotalMinutes:  minuteSum[p.ID],
		}
		if t, ok := lastActive[p.ID]; ok {
			ov.LastActiveAt = &t
		}
		out = append(out, ov)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// UserHistoryHandler returns one user's full analysis history for the admin
// drill-down view.
func UserHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, "Missing user id", http.StatusBadRequest)
		return
	}

	var records []history.Record
	err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// UpdateUserHandler edits a profile's display name and role.
func UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, "Missing user id", http.StatusBadRequest)
		return
	}

	var input struct {
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Role != "user" && input.Role != "admin" {
		http.Error(w, "Role must be user or admin", http.StatusBadRequest)
		return
	}

	result := db.DB.Model(&auth.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"full_name": input.FullName,
		"role":      input.Role,
	})
	if result.Error != nil {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// AnalyticsHandler serves the aggregate dashboards: daily visits, daily
// analyses by type, and the per-user activity ranking.
func AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	var profiles []auth.Profile
	db.DB.Find(&profiles)
	var sessions []session.UserSession
	db.DB.Find(&sessions)
	var records []history.Record
	db.DB.Find(&records)

	response := struct {
		DailyVisits   []analytics.VisitBucket    `json:"daily_visits"`
		DailyAnalyses []analytics.AnalysisBucket `json:"daily_analyses"`
		UserActivity  []analytics.UserStats      `json:"user_activity"`
	}{
		DailyVisits:   analytics.DailySessions(sessions, time.Local),
		DailyAnalyses: analytics.DailyAnalyses(records, time.Local),
		UserActivity:  analytics.UserActivity(profiles, sessions, records),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func MessagesHandler(w http.ResponseWriter, r *http.Request) {
	var messages []contact.Message
	if err := db.DB.Order("created_at DESC").Find(&messages).Error; err != nil {
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// ExportMessagesHandler streams the contact messages as CSV. The UTF-8 BOM
// keeps Excel from mangling non-ASCII names.
func ExportMessagesHandler(w http.ResponseWriter, r *http.Request) {
	var messages []contact.Message
	if err := db.DB.Order("created_at DESC").Find(&messages).Error; err != nil {
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contact_messages.csv"`)
	w.Write([]byte("\ufeff"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Date", "Name", "Email", "Subject", "Message"})
	for _, msg := range messages {
		cw.Write([]string{
			msg.CreatedAt.Format(time.RFC3339),
			msg.Name,
			msg.Email,
			msg.Subject,
			msg.Message,
		})
	}
	cw.Flush()
}
