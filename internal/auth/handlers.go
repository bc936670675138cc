package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Heartbeats is implemented by the session registry. The auth handlers start
// a tracker on sign-in and stop it on sign-out, before the session row is
// touched.
type Heartbeats interface {
	Start(sessionID, userID string)
	Stop(sessionID string)
}

// Mailer delivers password-reset links.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// Handlers carries the collaborators the auth endpoints need.
type Handlers struct {
	Heartbeats Heartbeats
	Mailer     Mailer
	Resets     *ResetTokens
	OAuth      *GoogleOAuth
	AppBaseURL string
}

type meResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if user.Email == "" || user.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}
	if len(user.Password) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	// Check if email is taken
	var existing User
	err = db.DB.First(&existing, "email = ?", user.Email).Error
	if err == nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	user.HashedPassword = string(hashed)
	user.UserID = uuid.NewString()

	fullName := user.FullName
	user.Password = ""

	if err := db.DB.Create(&user).Error; err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	// Seed the profile now so the display name survives; login would lazily
	// create it anyway.
	profile := LoadOrCreateProfile(user.UserID, user.Email)
	if fullName != "" && profile.FullName == "" {
		db.DB.Model(&Profile{}).Where("id = ?", user.UserID).Update("full_name", fullName)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"user_id": user.UserID,
		"email":   user.Email,
	})
}

func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	password := user.Password
	err = db.DB.First(&user, "email = ?", user.Email).Error
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password))
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	profile, err := h.establishSession(w, &user)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		UserID:   user.UserID,
		Email:    user.Email,
		FullName: profile.FullName,
		Role:     profile.Role,
	})
}

// establishSession issues the session cookie, upserts the auth session row,
// loads or creates the profile, and starts the heartbeat tracker. Shared by
// password and OAuth sign-in.
func (h *Handlers) establishSession(w http.ResponseWriter, user *User) (*Profile, error) {
	sessionID := uuid.NewString()
	http.SetCookie(w, sessionCookie(sessionID))

	var existing Session
	db.DB.Where("user_id = ?", user.UserID).First(&existing)
	if existing.UserID != "" {
		// Replacing the session invalidates the previous tab's cookie; its
		// tracker goes with it.
		h.Heartbeats.Stop(existing.SessionID)
		err := db.DB.Model(&existing).Updates(Session{
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		}).Error
		if err != nil {
			return nil, err
		}
	} else {
		session := Session{
			SessionID: sessionID,
			UserID:    user.UserID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		}
		if err := db.DB.Create(&session).Error; err != nil {
			return nil, err
		}
	}

	profile := LoadOrCreateProfile(user.UserID, user.Email)
	h.Heartbeats.Start(sessionID, user.UserID)
	return profile, nil
}

func sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     "session_id",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var session Session

	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		http.Error(w, "Couldn't find session", http.StatusUnauthorized)
		return
	}

	// Stop the heartbeat before deleting the session so no tick lands after
	// sign-out.
	h.Heartbeats.Stop(session.SessionID)
	db.DB.Delete(&session)

	deletedCookie := &http.Cookie{
		Name:   "session_id",
		Value:  "",
		MaxAge: 0,
		Path:   "/",
	}
	http.SetCookie(w, deletedCookie)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

func (h *Handlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Failed converting ID to string", http.StatusInternalServerError)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	profile := LoadOrCreateProfile(user.UserID, user.Email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		UserID:   user.UserID,
		Email:    user.Email,
		FullName: profile.FullName,
		Role:     profile.Role,
	})
}

func (h *Handlers) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	type updatePassword struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var user User
	var updatepass updatePassword

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusUnauthorized)
		return
	}

	err = json.NewDecoder(r.Body).Decode(&updatepass)
	if err != nil {
		http.Error(w, "Current and new password are required", http.StatusBadRequest)
		return
	}
	if len(updatepass.NewPassword) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(updatepass.CurrentPassword))
	if err != nil {
		http.Error(w, "Invalid current password", http.StatusUnauthorized)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(updatepass.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	db.DB.Model(&user).Update("hashed_password", string(hashed))

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Password updated")
}

func (h *Handlers) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	// Always answer 200 so the endpoint doesn't leak which emails exist.
	var user User
	if err := db.DB.First(&user, "email = ?", input.Email).Error; err == nil {
		token := uuid.NewString()
		h.Resets.Set(token, user.Email, time.Hour)
		link := fmt.Sprintf("%s/reset-password?token=%s", h.AppBaseURL, token)
		if err := h.Mailer.SendPasswordReset(user.Email, link); err != nil {
			http.Error(w, "Failed to send reset email", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "If that email exists, a reset link has been sent")
}

func (h *Handlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		http.Error(w, "Token and new password are required", http.StatusBadRequest)
		return
	}
	if len(input.NewPassword) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	email := h.Resets.Consume(input.Token)
	if email == "" {
		http.Error(w, "Invalid or expired token", http.StatusBadRequest)
		return
	}

	var user User
	if err := db.DB.First(&user, "email = ?", email).Error; err != nil {
		http.Error(w, "Couldn't find user", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	db.DB.Model(&user).Update("hashed_password", string(hashed))

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Password updated")
}
