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

func TestResourceClient_List(t *testing.T) {
	t.Parallel()

	t.Run("nil query sends no parameters", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("role", dfserver.Record{"name": "a"}, dfserver.Record{"name": "b"})

		roles, err := client.Roles().List(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, namesOf(roles, roleName))

		req := server.LastRequest()
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/rest/system/role", req.Path)
		assert.Empty(t, req.Query)
		assert.False(t, req.Query.Has("fields"))
		assert.False(t, req.Query.Has("related"))
		assert.Equal(t, "admin", req.Headers.Get("X-DreamFactory-Application-Name"))
		assert.Equal(t, "test-key", req.Headers.Get("X-DreamFactory-Api-Key"))
	})

	t.Run("new query sends default fields and relations", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("role", dfserver.Record{"name": "a"})

		_, err := client.Roles().List(context.Background(), dfapi.NewQuery())
		require.NoError(t, err)

		req := server.LastRequest()
		assert.Equal(t, "*", req.Query.Get("fields"))
		assert.Equal(t, "*", req.Query.Get("related"))
	})

	t.Run("filters and projects fields", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("app",
			dfserver.Record{"name": "admin", "is_active": true, "description": "console"},
			dfserver.Record{"name": "portal", "is_active": false, "description": "public"},
		)

		query := dfapi.NewQuery().
			WithFilter("is_active=true").
			WithFields("name", "is_active")

		apps, err := client.Apps().List(context.Background(), query)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "admin", *apps[0].Name)
		assert.True(t, *apps[0].IsActive)
		assert.Nil(t, apps[0].Description)
		assert.Nil(t, apps[0].ID)

		req := server.LastRequest()
		assert.Equal(t, "is_active=true", req.Query.Get("filter"))
		assert.Equal(t, "name,is_active", req.Query.Get("fields"))
	})

	t.Run("pages and orders", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("role",
			dfserver.Record{"name": "c"},
			dfserver.Record{"name": "a"},
			dfserver.Record{"name": "b"},
		)

		query := dfapi.NewQuery().WithOrder("name desc").WithLimit(2).WithOffset(1)

		roles, err := client.Roles().List(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, namesOf(roles, roleName))

		req := server.LastRequest()
		assert.Equal(t, "2", req.Query.Get("limit"))
		assert.Equal(t, "1", req.Query.Get("offset"))
		assert.Equal(t, "name desc", req.Query.Get("order"))
	})

	t.Run("selects ids", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		ids := server.Seed("role",
			dfserver.Record{"name": "a"},
			dfserver.Record{"name": "b"},
			dfserver.Record{"name": "c"},
		)

		roles, err := client.Roles().List(context.Background(), dfapi.NewQuery().WithIDs(ids[0], ids[2]))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, namesOf(roles, roleName))
		assert.Equal(t, "1,3", server.LastRequest().Query.Get("ids"))
	})

	t.Run("expands only requested relations", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("role", dfserver.Record{
			"name":        "viewer",
			"users":       []any{},
			"default_app": dfserver.Record{"id": 7, "name": "admin"},
		})

		roles, err := client.Roles().List(context.Background(),
			dfapi.NewQuery().WithRelated(dfapi.RelatedUsers))
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.NotNil(t, roles[0].Users)
		assert.Empty(t, roles[0].Users)
		assert.Nil(t, roles[0].DefaultApp)
		assert.Nil(t, roles[0].Apps)

		roles, err = client.Roles().List(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, roles[0].DefaultApp)
		assert.Nil(t, roles[0].Users)

		roles, err = client.Roles().List(context.Background(), dfapi.NewQuery())
		require.NoError(t, err)
		require.NotNil(t, roles[0].DefaultApp)
		assert.Equal(t, 7, *roles[0].DefaultApp.ID)
	})

	t.Run("rejects invalid query without a request", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Roles().List(context.Background(), dfapi.NewQuery().WithLimit(-1))
		require.ErrorIs(t, err, dfapi.ErrInvalidQuery)
		assert.Zero(t, server.RequestCount())
	})

	t.Run("surfaces bad filter as remote error", func(t *testing.T) {
		t.Parallel()

		_, client := newTestClient(t)

		_, err := client.Roles().List(context.Background(), dfapi.NewQuery().WithFilter("nonsense"))
		require.Error(t, err)
		assert.True(t, dfapi.IsBadRequest(err))
	})
}

func TestResourceClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns record", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		ids := server.Seed("user", dfserver.Record{
			"name":            "Jane",
			"email":           "jane@example.com",
			"last_login_date": "2024-03-01 10:20:30",
		})

		user, err := client.Users().Get(context.Background(), ids[0], nil)
		require.NoError(t, err)
		assert.Equal(t, ids[0], *user.ID)
		assert.Equal(t, "jane@example.com", *user.Email)
		require.NotNil(t, user.LastLogin)
		assert.Equal(t, 2024, user.LastLogin.Year())
		assert.Equal(t, "/rest/system/user/1", server.LastRequest().Path)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, client := newTestClient(t)

		_, err := client.Users().Get(context.Background(), 42, nil)
		require.Error(t, err)
		assert.True(t, dfapi.IsNotFound(err))

		var respErr *dfapi.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Contains(t, respErr.FirstError().Message, "42")
	})

	t.Run("rejects non-positive id", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		_, err := client.Users().Get(context.Background(), 0, nil)
		require.ErrorIs(t, err, dfapi.ErrInvalidID)
		assert.Zero(t, server.RequestCount())
	})
}

func TestResourceClient_Create(t *testing.T) {
	t.Parallel()

	t.Run("preserves order", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		input := []dfapi.Role{
			{Name: dfapi.String("first"), IsActive: dfapi.Bool(true)},
			{Name: dfapi.String("second")},
			{Name: dfapi.String("third"), Description: dfapi.String("last")},
		}

		created, err := client.Roles().Create(context.Background(), input)
		require.NoError(t, err)
		require.Len(t, created, 3)

		pairs, err := dfapi.Zip(input, created)
		require.NoError(t, err)

		for i, pair := range pairs {
			assert.Equal(t, *pair.Request.Name, *pair.Response.Name)
			assert.Equal(t, i+1, *pair.Response.ID)
		}

		req := server.LastRequest()
		assert.Equal(t, "POST", req.Method)

		var envelope map[string][]map[string]any
		require.NoError(t, json.Unmarshal(req.Body, &envelope))
		require.Len(t, envelope["record"], 3)
		assert.NotContains(t, envelope["record"][1], "description")
	})

	t.Run("rejected batch yields one error", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		server.Seed("role", dfserver.Record{"name": "taken"})

		_, err := client.Roles().Create(context.Background(), []dfapi.Role{
			{Name: dfapi.String("fresh")},
			{Name: dfapi.String("taken")},
			{Name: dfapi.String("other")},
		})
		require.Error(t, err)
		assert.True(t, dfapi.IsBadRequest(err))

		var respErr *dfapi.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Len(t, respErr.Errors, 1)
		assert.Len(t, server.Records("role"), 1)
	})

	t.Run("empty batch makes no request", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		created, err := client.Roles().Create(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, created)
		assert.Zero(t, server.RequestCount())
	})
}

func TestResourceClient_Update(t *testing.T) {
	t.Parallel()

	t.Run("merges fields", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		ids := server.Seed("service",
			dfserver.Record{"name": "db", "label": "Database", "is_active": true},
			dfserver.Record{"name": "files", "label": "Files", "is_active": true},
		)

		updated, err := client.Services().Update(context.Background(), []dfapi.Service{
			{ID: dfapi.Int(ids[1]), IsActive: dfapi.Bool(false)},
			{ID: dfapi.Int(ids[0]), Label: dfapi.String("Primary")},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, "files", *updated[0].Name)
		assert.False(t, *updated[0].IsActive)
		assert.Equal(t, "Primary", *updated[1].Label)
		assert.Equal(t, "PATCH", server.LastRequest().Method)

		records := server.Records("service")
		assert.Equal(t, "Primary", records[0]["label"])
		assert.Equal(t, true, records[0]["is_active"])
	})

	t.Run("empty batch makes no request", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		updated, err := client.Services().Update(context.Background(), []dfapi.Service{})
		require.NoError(t, err)
		assert.Empty(t, updated)
		assert.Zero(t, server.RequestCount())
	})
}

func TestResourceClient_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deletes by ids", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)
		ids := server.Seed("app",
			dfserver.Record{"name": "a"},
			dfserver.Record{"name": "b"},
			dfserver.Record{"name": "c"},
		)

		err := client.Apps().Delete(context.Background(), []int{ids[0], ids[2]}, dfapi.WithDeleteStorage(true))
		require.NoError(t, err)

		req := server.LastRequest()
		assert.Equal(t, "DELETE", req.Method)
		assert.Equal(t, "1,3", req.Query.Get("ids"))
		assert.Equal(t, "true", req.Query.Get("delete_storage"))

		remaining := server.Records("app")
		require.Len(t, remaining, 1)
		assert.Equal(t, "b", remaining[0]["name"])
	})

	t.Run("empty ids makes no request", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		require.NoError(t, client.Apps().Delete(context.Background(), nil))
		assert.Zero(t, server.RequestCount())
	})

	t.Run("rejects invalid id", func(t *testing.T) {
		t.Parallel()

		server, client := newTestClient(t)

		err := client.Devices().Delete(context.Background(), []int{1, -2})
		require.ErrorIs(t, err, dfapi.ErrInvalidID)
		assert.Zero(t, server.RequestCount())
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()

		_, client := newTestClient(t)

		err := client.Devices().Delete(context.Background(), []int{9})
		require.Error(t, err)
		assert.True(t, dfapi.IsNotFound(err))
	})
}
