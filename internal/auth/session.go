package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// SessionConfig holds what is needed to open a user session.
type SessionConfig struct {
	BaseURL  string
	AppName  string
	APIKey   string
	Email    string
	Password string
	// Token is an existing session token tried before logging in.
	Token string
	// HTTPClient overrides the client used for login requests.
	HTTPClient *http.Client
}

// Session describes the user a session belongs to.
type Session struct {
	SessionToken string `json:"session_token" yaml:"session_token"`
	SessionID    string `json:"session_id"    yaml:"session_id"`
	UserID       int    `json:"id"            yaml:"id"`
	Name         string `json:"name"          yaml:"name"`
	Email        string `json:"email"         yaml:"email"`
	IsSysAdmin   bool   `json:"is_sys_admin"  yaml:"is_sys_admin"`
	Host         string `json:"host"          yaml:"host"`
}

// SessionTokenManager logs in with email and password and logs in again
// whenever the transport reports the session as expired.
type SessionTokenManager struct {
	config     *SessionConfig
	httpClient *http.Client
	store      *TokenStore

	mu      sync.Mutex
	session *Session
}

// NewSessionTokenManager creates a manager. No request is made until the
// first token is needed.
func NewSessionTokenManager(config *SessionConfig) *SessionTokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	manager := &SessionTokenManager{
		config:     config,
		httpClient: httpClient,
		store:      NewTokenStore(),
	}

	if config.Token != "" {
		manager.store.Set(&Token{SessionToken: config.Token})
	}

	return manager
}

// GetToken returns a valid session token, logging in if necessary.
// Concurrent callers share a single login.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.SessionToken, nil
	}

	err := m.RefreshStaleToken(ctx, "")
	if err != nil {
		return "", err
	}

	return m.store.Get().SessionToken, nil
}

// RefreshToken opens a new session.
func (m *SessionTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.refresh(ctx)
}

// RefreshStaleToken opens a new session unless the rejected token has
// already been replaced by another caller.
func (m *SessionTokenManager) RefreshStaleToken(ctx context.Context, rejected string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.store.Get(); current.Valid() && current.SessionToken != rejected {
		return nil
	}

	return m.refresh(ctx)
}

// refresh must be called with m.mu held.
func (m *SessionTokenManager) refresh(ctx context.Context) error {
	session, err := m.login(ctx)
	if err != nil {
		return err
	}

	m.session = session
	m.store.Set(&Token{SessionToken: session.SessionToken, SessionID: session.SessionID})

	return nil
}

// SetToken manually sets the session token.
func (m *SessionTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{SessionToken: token, ExpiresAt: expiresAt})
}

// Session returns the last session opened by this manager, or nil.
func (m *SessionTokenManager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session
}

func (m *SessionTokenManager) login(ctx context.Context) (*Session, error) {
	if m.config.Email == "" || m.config.Password == "" {
		return nil, constants.ErrCredentialsRequired
	}

	payload, err := json.Marshal(map[string]string{
		"email":    m.config.Email,
		"password": m.config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding login request: %w", err)
	}

	endpoint := strings.TrimSuffix(m.config.BaseURL, "/") + constants.SessionPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}

	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	if m.config.AppName != "" {
		req.Header.Set(constants.HeaderApplicationName, m.config.AppName)
	}

	if m.config.APIKey != "" {
		req.Header.Set(constants.HeaderAPIKey, m.config.APIKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading login response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("logging in: %w", dfapi.ParseResponseError(resp.StatusCode, body))
	}

	return parseSession(body)
}

func parseSession(body []byte) (*Session, error) {
	var session Session

	err := json.Unmarshal(body, &session)
	if err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	// Older instances only return session_id and expect it as the token.
	if session.SessionToken == "" {
		session.SessionToken = session.SessionID
	}

	if session.SessionToken == "" {
		return nil, constants.ErrNoSessionID
	}

	return &session, nil
}
