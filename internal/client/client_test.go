package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/internal/auth"
	. "github.com/fivetwenty-io/dfapi/internal/client"
	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, dfapi.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &dfapi.Config{})
		require.ErrorIs(t, err, dfapi.ErrBaseURLRequired)
	})

	t.Run("creates client with session token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &dfapi.Config{
			BaseURL:      "https://df.example.com",
			SessionToken: "token",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.StaticTokenManager{}, client.GetTokenManager())
		assert.Equal(t, "https://df.example.com", client.BaseURL())
	})

	t.Run("creates client with credentials", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &dfapi.Config{
			BaseURL:  "https://df.example.com",
			Email:    "admin@example.com",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.SessionTokenManager{}, client.GetTokenManager())
	})

	t.Run("creates client without session", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &dfapi.Config{BaseURL: "https://df.example.com"})
		require.NoError(t, err)
		assert.Nil(t, client.GetTokenManager())
	})
}

func TestClient_Accessors(t *testing.T) {
	t.Parallel()

	_, client := newTestClient(t)

	assert.NotNil(t, client.Apps())
	assert.NotNil(t, client.AppGroups())
	assert.NotNil(t, client.Roles())
	assert.NotNil(t, client.Users())
	assert.NotNil(t, client.Services())
	assert.NotNil(t, client.EmailTemplates())
	assert.NotNil(t, client.Devices())
	assert.NotNil(t, client.Providers())
	assert.NotNil(t, client.ProviderUsers())
	assert.NotNil(t, client.Scripts())
	assert.NotNil(t, client.Events())
	assert.NotNil(t, client.SystemConfig())
	assert.NotNil(t, client.Constants())
}

func TestClient_SessionLogin(t *testing.T) {
	t.Parallel()

	server := dfserver.New()
	t.Cleanup(server.Close)

	server.Email = "admin@example.com"
	server.Password = "secret"
	server.RotateSession("session-1")
	server.Seed("role", dfserver.Record{"name": "viewer"})

	client, err := New(context.Background(), &dfapi.Config{
		BaseURL:  server.URL,
		Email:    "admin@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	roles, err := client.Roles().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, roles, 1)

	last := server.LastRequest()
	assert.Equal(t, "session-1", last.Headers.Get("X-DreamFactory-Session-Token"))

	// An expired session is renewed once and the call replayed.
	server.RotateSession("session-2")

	roles, err = client.Roles().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "session-2", server.LastRequest().Headers.Get("X-DreamFactory-Session-Token"))
}

func TestClient_GetEnvironment(t *testing.T) {
	t.Parallel()

	server, client := newTestClient(t)

	env, err := client.GetEnvironment(context.Background())
	require.NoError(t, err)
	require.NotNil(t, env.Server)
	assert.Equal(t, "/rest/system/environment", server.LastRequest().Path)
	assert.Contains(t, env.PhpInfo, "general")
}
