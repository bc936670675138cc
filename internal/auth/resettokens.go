package auth

import (
	"sync"
	"time"
)

type resetEntry struct {
	email     string
	expiresAt time.Time
}

// ResetTokens is a single-use, TTL-bound token store for the password-reset
// flow. In-memory on purpose: a lost token just means requesting a new link.
type ResetTokens struct {
	mu   sync.RWMutex
	data map[string]resetEntry
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{
		data: make(map[string]resetEntry),
	}
}

func (s *ResetTokens) Set(token string, email string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = resetEntry{
		email:     email,
		expiresAt: time.Now().Add(ttl),
	}
}

// Consume returns the email for token if not expired and removes the token
// (single-use). Returns "" if missing/expired.
func (s *ResetTokens) Consume(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok {
		return ""
	}
	delete(s.data, token)
	if time.Now().After(e.expiresAt) {
		return ""
	}
	return e.email
}

// Peek reads without consuming.
func (s *ResetTokens) Peek(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[token]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.email, true
}
