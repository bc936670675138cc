package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth holds the provider config for "Sign in with Google". State
// nonces ride the reset-token store; they are equally short-lived and
// single-use.
type GoogleOAuth struct {
	config *oauth2.Config
	states *ResetTokens
	done   string // where the browser lands after a completed sign-in
}

func NewGoogleOAuth(clientID, clientSecret, appBaseURL, selfBaseURL string) *GoogleOAuth {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  selfBaseURL + "/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		states: NewResetTokens(),
		done:   appBaseURL,
	}
}

func (h *Handlers) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusNotImplemented)
		return
	}

	state := uuid.NewString()
	h.OAuth.states.Set(state, "pending", 10*time.Minute)

	url := h.OAuth.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handlers) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusNotImplemented)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || h.OAuth.states.Consume(state) == "" {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.OAuth.config.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "OAuth exchange failed", http.StatusBadGateway)
		return
	}

	info, err := fetchGoogleUserInfo(r, h.OAuth.config, token)
	if err != nil {
		http.Error(w, "Failed to fetch user info", http.StatusBadGateway)
		return
	}
	if info.Email == "" {
		http.Error(w, "Google account has no email", http.StatusBadGateway)
		return
	}

	user, err := findOrCreateOAuthUser(info.Email, info.Name)
	if err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if _, err := h.establishSession(w, user); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.OAuth.done, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(r *http.Request, cfg *oauth2.Config, token *oauth2.Token) (*googleUserInfo, error) {
	client := cfg.Client(r.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	return &info, nil
}

// findOrCreateOAuthUser looks up the credential row by email, creating one
// with no usable password for first-time Google sign-ins.
func findOrCreateOAuthUser(email, fullName string) (*User, error) {
	var user User
	err := db.DB.First(&user, "email = ?", email).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = User{
		UserID: uuid.NewString(),
		Email:  email,
		// No HashedPassword: password login stays disabled until a reset.
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	profile := LoadOrCreateProfile(user.UserID, user.Email)
	if fullName != "" && profile.FullName == "" {
		db.DB.Model(&Profile{}).Where("id = ?", user.UserID).Update("full_name", fullName)
	}
	return &user, nil
}
