package dfclient_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
	"github.com/fivetwenty-io/dfapi/pkg/dfclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := dfclient.New(context.Background(), nil)
		require.ErrorIs(t, err, dfapi.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := dfclient.New(context.Background(), &dfapi.Config{BaseURL: "  "})
		require.ErrorIs(t, err, dfapi.ErrBaseURLRequired)
	})

	t.Run("normalizes base URL", func(t *testing.T) {
		t.Parallel()

		config := &dfapi.Config{BaseURL: "df.example.com/rest/"}

		client, err := dfclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "https://df.example.com", config.BaseURL)
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://df.example.com":       "https://df.example.com",
		"https://df.example.com/":      "https://df.example.com",
		"http://localhost:8080/rest":   "http://localhost:8080",
		"df.example.com":               "https://df.example.com",
		" https://df.example.com/df/ ": "https://df.example.com/df",
	}

	for in, want := range tests {
		assert.Equal(t, want, dfclient.NormalizeBaseURL(in), in)
	}
}

func TestNewWithSessionToken(t *testing.T) {
	t.Parallel()

	server := dfserver.New()
	t.Cleanup(server.Close)

	server.RotateSession("existing")
	server.Seed("service", dfserver.Record{"name": "db"})

	client, err := dfclient.NewWithSessionToken(context.Background(), server.URL, "admin", "existing")
	require.NoError(t, err)

	services, err := client.Services().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "db", *services[0].Name)
	assert.Equal(t, "admin", server.LastRequest().Headers.Get("X-DreamFactory-Application-Name"))
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := dfserver.New()
	t.Cleanup(server.Close)

	server.Email = "admin@example.com"
	server.Password = "secret"

	client, err := dfclient.NewWithPassword(context.Background(), server.URL, "admin", "admin@example.com", "secret")
	require.NoError(t, err)

	_, err = client.Roles().List(context.Background(), nil)
	require.NoError(t, err)

	requests := server.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "/rest/user/session", requests[0].Path)
	assert.NotEmpty(t, requests[1].Headers.Get("X-DreamFactory-Session-Token"))
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	server := dfserver.New()
	t.Cleanup(server.Close)

	client, err := dfclient.NewWithAPIKey(context.Background(), server.URL, "key-123")
	require.NoError(t, err)

	_, err = client.Constants().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-123", server.LastRequest().Headers.Get("X-DreamFactory-Api-Key"))
}
