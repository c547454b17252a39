package client_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/internal/testutil/dfserver"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func TestSystemConfigClient(t *testing.T) {
	t.Parallel()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.SetConfig(dfserver.Record{
			"guest_role_id":    3,
			"restricted_verbs": []string{"patch"},
		})

		config, err := client.SystemConfig().Get(context.Background())
		require.NoError(t, err)
		require.NotNil(t, config.GuestRoleID)
		assert.Equal(t, 3, *config.GuestRoleID)
		assert.Equal(t, []string{"patch"}, config.RestrictedVerbs)
	})

	t.Run("set sends only given fields", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.SetConfig(dfserver.Record{"guest_role_id": 3})

		updated, err := client.SystemConfig().Set(context.Background(), &dfapi.SystemConfig{
			InviteEmailServiceID: dfapi.Int(5),
		})
		require.NoError(t, err)
		assert.Equal(t, 5, *updated.InviteEmailServiceID)
		assert.Equal(t, 3, *updated.GuestRoleID)

		var sent map[string]any
		require.NoError(t, json.Unmarshal(server.LastRequest().Body, &sent))
		assert.Len(t, sent, 1)
		assert.Contains(t, sent, "invite_email_service_id")
	})

	t.Run("set requires payload", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.SystemConfig().Set(context.Background(), nil)
		require.ErrorIs(t, err, dfapi.ErrConfigPayloadRequired)
		assert.Zero(t, server.RequestCount())
	})
}
