package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting config changes.
type ConfigPersister interface {
	UpdateSessionToken(instance, token string) error
}

// ConfigTokenManager wraps SessionTokenManager and persists every new
// session token so later CLI invocations can reuse it.
type ConfigTokenManager struct {
	sessionManager  *SessionTokenManager
	configPersister ConfigPersister
	instance        string
	mutex           sync.Mutex
	lastToken       string
}

// NewConfigTokenManager creates a new config-persisting token manager.
func NewConfigTokenManager(config *SessionConfig, configPersister ConfigPersister, instance string) *ConfigTokenManager {
	return &ConfigTokenManager{
		sessionManager:  NewSessionTokenManager(config),
		configPersister: configPersister,
		instance:        instance,
		lastToken:       config.Token,
	}
}

// GetToken returns a valid session token, logging in if necessary.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.sessionManager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged(token)

	return token, nil
}

// RefreshToken forces a new session.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.sessionManager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	token := m.sessionManager.store.Get()
	if token != nil {
		m.persistIfChanged(token.SessionToken)
	}

	return nil
}

// RefreshStaleToken renews the session unless rejected was already replaced.
func (m *ConfigTokenManager) RefreshStaleToken(ctx context.Context, rejected string) error {
	err := m.sessionManager.RefreshStaleToken(ctx, rejected)
	if err != nil {
		return err
	}

	token := m.sessionManager.store.Get()
	if token != nil {
		m.persistIfChanged(token.SessionToken)
	}

	return nil
}

// SetToken manually sets the session token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.sessionManager.SetToken(token, expiresAt)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.lastToken = token
}

func (m *ConfigTokenManager) persistIfChanged(token string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if token == m.lastToken {
		return
	}

	err := m.persistToken(token)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist session token: %v\n", err)

		return
	}

	m.lastToken = token
}

func (m *ConfigTokenManager) persistToken(token string) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateSessionToken(m.instance, token)
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}

	return nil
}
