package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/dfapi/internal/client"
	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// newTestClient starts a fake instance and a client pointed at it.
func newTestClient(t *testing.T) (*dfserver.Server, *Client) {
	t.Helper()

	server := dfserver.New()
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &dfapi.Config{
		BaseURL: server.URL,
		AppName: "admin",
		APIKey:  "test-key",
	})
	require.NoError(t, err)

	return server, client
}

func namesOf[T any](records []T, name func(T) *string) []string {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, *name(record))
	}

	return names
}

func roleName(role dfapi.Role) *string { return role.Name }
