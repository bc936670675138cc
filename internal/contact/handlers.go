package contact

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/google/uuid"
)

// SubmitHandler accepts a contact-form message. Unlike heartbeat/history
// writes this one is user-visible mail: a failed insert is surfaced, not
// swallowed.
func SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var msg Message

	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		http.Error(w, "Name, email and message are required", http.StatusBadRequest)
		return
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()

	if err := db.DB.Create(&msg).Error; err != nil {
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	fmt.Fprintln(w, "Message received")
}
