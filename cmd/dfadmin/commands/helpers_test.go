package commands

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func TestParseIDs(t *testing.T) {
	t.Parallel()

	ids, err := parseIDs([]string{"1,2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	_, err = parseIDs([]string{"one"})
	require.Error(t, err)

	_, err = parseIDs([]string{" , "})
	require.ErrorIs(t, err, constants.ErrAtLeastOneIDNeeded)
}

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	params, err := parseKeyValues([]string{"limit=5", "mode=fast", "dry=true", "expr=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": 5, "mode": "fast", "dry": true, "expr": "a=b"}, params)

	_, err = parseKeyValues([]string{"novalue"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)

	_, err = parseKeyValues([]string{"=x"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)
}

func TestDeleteOptions(t *testing.T) {
	t.Parallel()

	opts, err := deleteOptions([]string{"delete_storage=true"})
	require.NoError(t, err)
	require.Len(t, opts, 1)

	values := url.Values{}
	opts[0](values)
	assert.Equal(t, "true", values.Get(constants.ParamDeleteStorage))

	_, err = deleteOptions([]string{"broken"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)
}

func TestReadRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"json list", `[{"name":"ops"},{"name":"dev"}]`, []string{"ops", "dev"}},
		{"json object", `{"name":"ops"}`, []string{"ops"}},
		{"yaml list", "- name: ops\n  is_active: true\n- name: dev\n", []string{"ops", "dev"}},
		{"yaml object", "name: ops\ndescription: operators\n", []string{"ops"}},
	}

	for i, tt := range tests {
		path := write(strconv.Itoa(i)+".txt", tt.content)

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			roles, err := readRecords[dfapi.Role](path)
			require.NoError(t, err)

			names := make([]string, 0, len(roles))
			for _, role := range roles {
				names = append(names, *role.Name)
			}

			assert.Equal(t, tt.want, names)
		})
	}

	_, err := readRecords[dfapi.Role]("")
	require.ErrorIs(t, err, constants.ErrRecordFileRequired)

	_, err = readRecords[dfapi.Role](write("bad.json", `[{"name":}]`))
	require.ErrorIs(t, err, constants.ErrInvalidRecordFormat)

	_, err = readRecords[dfapi.Role](filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	assert.Empty(t, formatCell(nil))
	assert.Equal(t, "x", formatCell("x"))
	assert.Equal(t, Yes, formatCell(true))
	assert.Equal(t, No, formatCell(false))
	assert.Equal(t, "2", formatCell([]any{1, 2}))
	assert.Equal(t, "portal", formatCell(map[string]any{"name": "portal"}))
	assert.Equal(t, NotAvailable, formatCell(map[string]any{"id": 1}))
	assert.Equal(t, "42", formatCell(42))
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"ID", "IS ACTIVE"}, headers([]string{"id", "is_active"}))
}

func TestInstanceNameFromURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "df.example.com", instanceNameFromURL("https://df.example.com"))
	assert.Equal(t, "127.0.0.1:8080", instanceNameFromURL("http://127.0.0.1:8080"))
	assert.Equal(t, "not a url", instanceNameFromURL("not a url"))
}
