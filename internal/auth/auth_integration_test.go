package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

// fakeHeartbeats records Start/Stop calls so tests can assert the tracker
// lifecycle without a live registry.
type fakeHeartbeats struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (f *fakeHeartbeats) Start(sessionID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, sessionID)
}

func (f *fakeHeartbeats) Stop(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, sessionID)
}

// fakeMailer captures the last reset link instead of sending mail.
type fakeMailer struct {
	mu       sync.Mutex
	lastTo   string
	lastLink string
}

func (f *fakeMailer) SendPasswordReset(to, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTo = to
	f.lastLink = link
	return nil
}

var (
	heartbeats = &fakeHeartbeats{}
	mailer     = &fakeMailer{}
	resets     = auth.NewResetTokens()
)

func TestMain(m *testing.M) {
	// Load .env.local relative to the repo root (two directories up from internal/auth/).
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	db.Connect()
	dbAvailable = true

	// Set up auth tables (idempotent).
	auth.Init()

	handlers := &auth.Handlers{
		Heartbeats: heartbeats,
		Mailer:     mailer,
		Resets:     resets,
		AppBaseURL: "http://localhost:5173",
	}

	// Mount auth routes on a Chi router, matching production setup in main.go.
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.CORSMiddleware)
	r.Mount("/auth", auth.SetupRoutes(handlers))

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// createTestUser inserts a unique user into the database and registers a cleanup
// function to remove it. Returns the email and plaintext password.
func createTestUser(t *testing.T) (email, password string) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	email = fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8])
	password = "TestPass123!"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	user := auth.User{
		UserID:         uuid.New().String(),
		Email:          email,
		HashedPassword: string(hashed),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Session{})
		db.DB.Where("id = ?", user.UserID).Delete(&auth.Profile{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.User{})
	})

	return email, password
}

// newClientWithJar returns an http.Client with a fresh cookie jar that automatically
// carries cookies between requests.
func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{Jar: jar}
}

// loginUser posts to /auth/login and returns the response. The client's cookie jar
// is populated with the session_id cookie on success.
func loginUser(t *testing.T, client *http.Client, email, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	resp, err := client.Post(testServer.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /auth/login: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string, draining and closing it.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// postJSON posts a JSON body to path and returns the response.
func postJSON(t *testing.T, client *http.Client, path string, payload map[string]string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := client.Post(testServer.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// TestRegisterCreatesUserAndProfile verifies that POST /auth/register returns 201,
// creates the user, and seeds a profile with the supplied full name.
func TestRegisterCreatesUserAndProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	email := fmt.Sprintf("newuser_%s@example.com", uuid.New().String()[:8])
	client := newClientWithJar(t)

	resp := postJSON(t, client, "/auth/register", map[string]string{
		"email":     email,
		"password":  "FreshPass456!",
		"full_name": "New User",
	})
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", resp.StatusCode, body)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	userID := result["user_id"]
	if userID == "" {
		t.Fatal("expected user_id in response body")
	}
	t.Cleanup(func() {
		db.DB.Where("user_id = ?", userID).Delete(&auth.Session{})
		db.DB.Where("id = ?", userID).Delete(&auth.Profile{})
		db.DB.Where("user_id = ?", userID).Delete(&auth.User{})
	})

	var profile auth.Profile
	if err := db.DB.First(&profile, "id = ?", userID).Error; err != nil {
		t.Fatalf("expected a seeded profile: %v", err)
	}
	if profile.FullName != "New User" {
		t.Errorf("expected full name %q, got %q", "New User", profile.FullName)
	}
	if profile.Role != "user" {
		t.Errorf("expected default role user, got %q", profile.Role)
	}
}

// TestRegisterDuplicateEmail verifies the 409 on re-registering an existing email.
func TestRegisterDuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, _ := createTestUser(t)
	client := newClientWithJar(t)

	resp := postJSON(t, client, "/auth/register", map[string]string{
		"email":    email,
		"password": "AnotherPass789!",
	})
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d; body: %s", resp.StatusCode, body)
	}
}

// TestLoginReturnsSessionCookie verifies that POST /auth/login with valid credentials
// returns 200, a Set-Cookie header containing session_id, and a JSON body with user_id,
// email, and role.
func TestLoginReturnsSessionCookie(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, password := createTestUser(t)
	client := newClientWithJar(t)

	resp := loginUser(t, client, email, password)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	// Check Set-Cookie header contains session_id.
	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, "session_id") {
		t.Errorf("expected Set-Cookie to contain 'session_id', got: %q", setCookie)
	}

	// Check JSON body contains user_id, email, and the default role.
	var result map[string]string
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if result["user_id"] == "" {
		t.Error("expected user_id in response body")
	}
	if result["email"] != email {
		t.Errorf("expected email %q, got %q", email, result["email"])
	}
	if result["role"] != "user" {
		t.Errorf("expected role user, got %q", result["role"])
	}
}

// TestLoginStartsHeartbeat verifies that a successful login starts a heartbeat
// tracker keyed by the session ID the cookie carries.
func TestLoginStartsHeartbeat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, password := createTestUser(t)
	client := newClientWithJar(t)

	resp := loginUser(t, client, email, password)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d %s", resp.StatusCode, body)
	}

	var sessionID string
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			sessionID = c.Value
		}
	}
	if sessionID == "" {
		t.Fatal("expected a session_id cookie")
	}

	heartbeats.mu.Lock()
	defer heartbeats.mu.Unlock()
	found := false
	for _, id := range heartbeats.started {
		if id == sessionID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected heartbeat Start for session %q", sessionID)
	}
}

// TestSessionPersistsAcrossRequests verifies that after login, GET /auth/me returns 200
// with the correct user data when the same cookie-jar client is used. This confirms
// the session cookie is stored and sent automatically on subsequent requests.
func TestSessionPersistsAcrossRequests(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, password := createTestUser(t)
	client := newClientWithJar(t)

	loginResp := loginUser(t, client, email, password)
	loginBody := readBody(t, loginResp)
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginResp.StatusCode, loginBody)
	}

	// GET /auth/me — cookie jar carries session_id automatically.
	meResp, err := client.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET /auth/me: %v", err)
	}
	meBody := readBody(t, meResp)

	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d; body: %s", meResp.StatusCode, meBody)
	}

	var me map[string]interface{}
	if err := json.Unmarshal([]byte(meBody), &me); err != nil {
		t.Fatalf("invalid JSON body: %s", meBody)
	}
	if me["email"] != email {
		t.Errorf("expected email %q from /auth/me, got %q", email, me["email"])
	}
}

// TestLogoutClearsSession verifies the full logout flow: login, logout, then /auth/me
// returns 401, and the heartbeat tracker was stopped. This confirms the session is
// deleted from the database on logout.
func TestLogoutClearsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, password := createTestUser(t)
	client := newClientWithJar(t)

	// Login.
	loginResp := loginUser(t, client, email, password)
	loginBody := readBody(t, loginResp)
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginResp.StatusCode, loginBody)
	}

	var sessionID string
	for _, c := range loginResp.Cookies() {
		if c.Name == "session_id" {
			sessionID = c.Value
		}
	}

	// Logout.
	logoutResp, err := client.Post(testServer.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /auth/logout: %v", err)
	}
	logoutBody := readBody(t, logoutResp)
	if logoutResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /auth/logout, got %d; body: %s", logoutResp.StatusCode, logoutBody)
	}

	heartbeats.mu.Lock()
	stopped := false
	for _, id := range heartbeats.stopped {
		if id == sessionID {
			stopped = true
		}
	}
	heartbeats.mu.Unlock()
	if !stopped {
		t.Errorf("expected heartbeat Stop for session %q", sessionID)
	}

	// /auth/me should now return 401.
	meResp, err := client.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET /auth/me after logout: %v", err)
	}
	meBody := readBody(t, meResp)

	if meResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 from /auth/me after logout, got %d; body: %s", meResp.StatusCode, meBody)
	}
}

// TestExpiredSessionRejected verifies that a session manually expired in the database
// is rejected with 401 and the body contains "Session expired".
func TestExpiredSessionRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, password := createTestUser(t)
	client := newClientWithJar(t)

	// Login to get a valid session.
	loginResp := loginUser(t, client, email, password)
	loginBody := readBody(t, loginResp)
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginResp.StatusCode, loginBody)
	}

	// Retrieve user_id from login body to target the correct session.
	var loginResult map[string]string
	if err := json.Unmarshal([]byte(loginBody), &loginResult); err != nil {
		t.Fatalf("invalid login response JSON: %s", loginBody)
	}
	userID := loginResult["user_id"]

	// Manually expire the session in the database.
	if err := db.DB.Model(&auth.Session{}).
		Where("user_id = ?", userID).
		Update("expires_at", time.Now().Add(-1*time.Hour)).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	// GET /auth/me should now return 401 with "Session expired".
	meResp, err := client.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET /auth/me after expiry: %v", err)
	}
	meBody := readBody(t, meResp)

	if meResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 from /auth/me with expired session, got %d; body: %s", meResp.StatusCode, meBody)
	}
	if !strings.Contains(meBody, "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", meBody)
	}
}

// TestPasswordResetFlow verifies forgot-password (always 200), the captured mail
// link, reset-password with the single-use token, and login with the new password.
func TestPasswordResetFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	email, _ := createTestUser(t)
	client := newClientWithJar(t)

	// Unknown email still answers 200, so existence can't be probed.
	resp := postJSON(t, client, "/auth/forgot-password", map[string]string{
		"email": "nobody_" + uuid.New().String()[:8] + "@example.com",
	})
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown email, got %d", resp.StatusCode)
	}

	// Known email: the mailer captures the link carrying the token.
	resp = postJSON(t, client, "/auth/forgot-password", map[string]string{"email": email})
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for known email, got %d", resp.StatusCode)
	}

	mailer.mu.Lock()
	link := mailer.lastLink
	to := mailer.lastTo
	mailer.mu.Unlock()
	if to != email {
		t.Fatalf("expected reset mail to %q, got %q", email, to)
	}
	idx := strings.Index(link, "token=")
	if idx < 0 {
		t.Fatalf("expected token in reset link, got %q", link)
	}
	token := link[idx+len("token="):]

	// Redeem the token.
	const newPassword = "BrandNewPass99!"
	resp = postJSON(t, client, "/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": newPassword,
	})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from reset-password, got %d; body: %s", resp.StatusCode, body)
	}

	// The token is single-use.
	resp = postJSON(t, client, "/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": "YetAnotherPass11!",
	})
	readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 on token reuse, got %d", resp.StatusCode)
	}

	// The new password works.
	loginResp := loginUser(t, newClientWithJar(t), email, newPassword)
	loginBody := readBody(t, loginResp)
	if loginResp.StatusCode != http.StatusOK {
		t.Errorf("expected login with new password to succeed, got %d; body: %s", loginResp.StatusCode, loginBody)
	}
}
