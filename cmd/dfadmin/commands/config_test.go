package commands

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func login(t *testing.T, server *dfserver.Server) {
	t.Helper()

	server.Email = "admin@example.com"
	server.Password = "secret"

	out := mustRun(t, "login", "--url", server.URL, "--email", "admin@example.com", "--password", "secret",
		"--name", "local", "--app-name", "admin")
	assert.Contains(t, out, "Logged in to")
	assert.Contains(t, out, "instance 'local'")
}

func TestLogin(t *testing.T) {
	server := newCLI(t)
	server.Seed("role", dfserver.Record{"name": "admins"})

	login(t, server)
	require.NotEmpty(t, server.SessionToken)

	data, err := os.ReadFile(viper.ConfigFileUsed())
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "local", saved.CurrentInstance)
	require.Contains(t, saved.Instances, "local")
	assert.Equal(t, server.SessionToken, saved.Instances["local"].SessionToken)
	assert.Equal(t, "admin", saved.Instances["local"].AppName)
	assert.NotEmpty(t, saved.Instances["local"].LastLogin)

	// The saved instance and session are used without any flags.
	out := mustRun(t, "roles", "list", "-o", "json")

	var roles []dfapi.Role
	require.NoError(t, json.Unmarshal([]byte(out), &roles))
	require.Len(t, roles, 1)

	last := server.LastRequest()
	assert.Equal(t, server.SessionToken, last.Headers.Get(constants.HeaderSessionToken))
	assert.Equal(t, "admin", last.Headers.Get(constants.HeaderApplicationName))

	mustRun(t, "logout")

	_, err = run(t, "roles", "list")
	require.Error(t, err)
	assert.True(t, dfapi.IsUnauthorized(err))
}

func TestLogin_BadCredentials(t *testing.T) {
	server := newCLI(t)
	server.Email = "admin@example.com"
	server.Password = "secret"

	_, err := run(t, "login", "--url", server.URL, "--email", "admin@example.com", "--password", "wrong")
	require.Error(t, err)

	assert.Empty(t, loadConfig().Instances)
}

func TestConfigCommands(t *testing.T) {
	server := newCLI(t)
	login(t, server)

	t.Run("show masks secrets", func(t *testing.T) {
		out := mustRun(t, "config", "show", "-o", "json")

		var shown Config
		require.NoError(t, json.Unmarshal([]byte(out), &shown))
		assert.Equal(t, Masked, shown.Instances["local"].SessionToken)
		assert.NotContains(t, out, server.SessionToken)
	})

	t.Run("show table", func(t *testing.T) {
		out := mustRun(t, "config", "show")
		assert.Contains(t, out, "local")
		assert.Contains(t, out, server.URL)
	})

	t.Run("set", func(t *testing.T) {
		mustRun(t, "config", "set", "api_key", "abc")
		assert.Equal(t, "abc", loadConfig().Instances["local"].APIKey)

		_, err := run(t, "config", "set", "colour", "blue")
		require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
	})

	t.Run("use", func(t *testing.T) {
		_, err := run(t, "config", "use", "missing")
		require.ErrorIs(t, err, constants.ErrInstanceNotFound)

		out := mustRun(t, "config", "use", "local")
		assert.Contains(t, out, "Now using instance 'local'")
	})

	t.Run("remove", func(t *testing.T) {
		mustRun(t, "config", "remove", "local")

		config := loadConfig()
		assert.Empty(t, config.Instances)
		assert.Empty(t, config.CurrentInstance)
	})

	t.Run("clear", func(t *testing.T) {
		mustRun(t, "config", "clear")

		_, err := os.Stat(viper.ConfigFileUsed())
		assert.True(t, os.IsNotExist(err))
	})
}

func TestConfigPersister(t *testing.T) {
	newCLI(t)

	persister := NewConfigPersister()

	err := persister.UpdateSessionToken("local", "token")
	require.ErrorIs(t, err, constants.ErrNoInstancesConfigured)

	require.NoError(t, saveConfigStruct(&Config{
		Instances: map[string]*InstanceConfig{"local": {BaseURL: "https://df.example.com"}},
	}))

	require.NoError(t, persister.UpdateSessionToken("local", "token"))

	inst := loadConfig().Instances["local"]
	require.NotNil(t, inst)
	assert.Equal(t, "token", inst.SessionToken)
	assert.NotEmpty(t, inst.LastLogin)
}
