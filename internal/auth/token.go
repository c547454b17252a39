// Package auth provides the session token managers used by the transport.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// expiryBuffer treats tokens that are about to expire as already expired.
const expiryBuffer = 30 * time.Second

// Token is a DreamFactory session token. A zero ExpiresAt means the server
// did not say when it expires; such tokens are kept until a 401.
type Token struct {
	SessionToken string    `json:"session_token"`
	SessionID    string    `json:"session_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be sent.
func (t *Token) Valid() bool {
	if t == nil || t.SessionToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token. It is safe for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// StaticTokenManager sends a fixed session token and never refreshes it.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	store := NewTokenStore()
	store.Set(&Token{SessionToken: token})

	return &StaticTokenManager{store: store}
}

// GetToken returns the configured token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token == nil {
		return "", nil
	}

	return token.SessionToken, nil
}

// RefreshToken always fails.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return constants.ErrStaticTokenNoRefresh
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{SessionToken: token, ExpiresAt: expiresAt})
}
