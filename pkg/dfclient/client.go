package dfclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dfapi/internal/client"
	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// New creates a new DreamFactory system API client.
func New(ctx context.Context, config *dfapi.Config) (dfapi.Client, error) {
	if config == nil {
		return nil, dfapi.ErrConfigRequired
	}

	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, dfapi.ErrBaseURLRequired
	}

	config.BaseURL = NormalizeBaseURL(config.BaseURL)

	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeBaseURL returns the instance root for url. A missing scheme
// defaults to https, and a trailing slash or /rest suffix is removed.
func NormalizeBaseURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, constants.RestPrefix)

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	return url
}

// NewWithSessionToken creates a client that sends an existing session token.
func NewWithSessionToken(ctx context.Context, baseURL, appName, token string) (dfapi.Client, error) {
	return New(ctx, &dfapi.Config{
		BaseURL:      baseURL,
		AppName:      appName,
		SessionToken: token,
	})
}

// NewWithPassword creates a client that logs in with email and password.
func NewWithPassword(ctx context.Context, baseURL, appName, email, password string) (dfapi.Client, error) {
	return New(ctx, &dfapi.Config{
		BaseURL:  baseURL,
		AppName:  appName,
		Email:    email,
		Password: password,
	})
}

// NewWithAPIKey creates a client that authenticates with an API key only.
func NewWithAPIKey(ctx context.Context, baseURL, apiKey string) (dfapi.Client, error) {
	return New(ctx, &dfapi.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}
