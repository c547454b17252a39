package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand("1.2.3", "abc123", "2026-10-19")

	assert.Equal(t, "dfadmin", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	for flag := range persistentFlags {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	for _, name := range []string{
		"version", "login", "logout", "config", "apps", "app-groups", "roles", "users",
		"services", "email-templates", "devices", "providers", "provider-users",
		"scripts", "events", "system-config", "constants", "environment",
	} {
		assert.NotNil(t, findSubcommand(root, name), name)
	}
}

func TestResourceCommandStructure(t *testing.T) {
	root := NewRootCommand("dev", "none", "unknown")

	roles := findSubcommand(root, "roles")
	require.NotNil(t, roles)
	assert.Contains(t, roles.Aliases, "role")

	for _, name := range []string{"list", "get", "create", "update", "delete"} {
		assert.NotNil(t, findSubcommand(roles, name), name)
	}

	list := findSubcommand(roles, "list")
	for _, flag := range []string{"filter", "order", "fields", "related", "ids", "limit", "offset", "include-count"} {
		assert.NotNil(t, list.Flags().Lookup(flag), flag)
	}

	assert.Equal(t, "50", list.Flags().Lookup("limit").DefValue)

	apps := findSubcommand(root, "apps")
	require.NotNil(t, apps)
	assert.NotNil(t, findSubcommand(apps, "package"))
	assert.NotNil(t, findSubcommand(apps, "sdk"))

	deleteCmd := findSubcommand(apps, "delete")
	require.NotNil(t, deleteCmd)
	assert.NotNil(t, deleteCmd.Flags().Lookup("param"))
}

func TestConfigCommandStructure(t *testing.T) {
	cmd := NewConfigCommand()

	assert.Equal(t, "config", cmd.Use)

	for _, name := range []string{"show", "set", "use", "remove", "clear"} {
		assert.NotNil(t, findSubcommand(cmd, name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	newCLI(t)

	out := mustRun(t, "version", "-o", "json")
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","built":"2026-10-19"}`, out)

	out = mustRun(t, "version")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc123")
}
