package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
)

// newCLI resets global configuration, points it at a scratch config file and
// starts a fake instance.
func newCLI(t *testing.T) *dfserver.Server {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigFile(filepath.Join(t.TempDir(), "config.yml"))

	server := dfserver.New()
	t.Cleanup(server.Close)

	return server
}

// run executes a fresh command tree and returns everything it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand("1.2.3", "abc123", "2026-10-19")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := run(t, args...)
	require.NoError(t, err, out)

	return out
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}

	return nil
}
