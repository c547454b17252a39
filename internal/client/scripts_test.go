package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func TestScriptsClient(t *testing.T) {
	t.Parallel()

	t.Run("write sends plain text", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		script, err := client.Scripts().Write(context.Background(), "db._table.get.pre_process", "event.ok = true;")
		require.NoError(t, err)
		assert.Equal(t, "db._table.get.pre_process", *script.Name)

		req := server.LastRequest()
		assert.Equal(t, "PUT", req.Method)
		assert.Equal(t, "text/plain", req.Headers.Get("Content-Type"))
		assert.Equal(t, "event.ok = true;", string(req.Body))

		body, ok := server.Script("db._table.get.pre_process")
		require.True(t, ok)
		assert.Equal(t, "event.ok = true;", body)
	})

	t.Run("list filters user scripts", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Scripts().Write(context.Background(), "system.cron", "1")
		require.NoError(t, err)
		_, err = client.Scripts().Write(context.Background(), "user.hello", "2")
		require.NoError(t, err)

		scripts, err := client.Scripts().List(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, scripts, 1)
		assert.Equal(t, "system.cron", *scripts[0].Name)
		assert.Equal(t, "false", server.LastRequest().Query.Get("include_user_scripts"))

		scripts, err = client.Scripts().List(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, scripts, 2)
	})

	t.Run("run passes params", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Scripts().Write(context.Background(), "job", "return 1;")
		require.NoError(t, err)

		out, err := client.Scripts().Run(context.Background(), "job", map[string]any{"limit": 5, "mode": "fast"}, true)
		require.NoError(t, err)
		assert.Equal(t, "ran job limit=5&mode=fast", out)
		assert.Equal(t, "true", server.LastRequest().Query.Get("log_output"))
	})

	t.Run("delete removes script", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Scripts().Write(context.Background(), "job", "x")
		require.NoError(t, err)
		require.NoError(t, client.Scripts().Delete(context.Background(), "job"))

		_, ok := server.Script("job")
		assert.False(t, ok)

		err = client.Scripts().Delete(context.Background(), "job")
		assert.True(t, dfapi.IsNotFound(err))
	})

	t.Run("requires id", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Scripts().Write(context.Background(), "", "x")
		require.ErrorIs(t, err, dfapi.ErrScriptIDRequired)
		_, err = client.Scripts().Run(context.Background(), "", nil, false)
		require.ErrorIs(t, err, dfapi.ErrScriptIDRequired)
		require.ErrorIs(t, client.Scripts().Delete(context.Background(), ""), dfapi.ErrScriptIDRequired)
		assert.Zero(t, server.RequestCount())
	})
}
