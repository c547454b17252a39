package dfapi_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.March, 1, 10, 20, 30, 0, time.UTC)

	for _, value := range []string{"2024-03-01 10:20:30", "2024-03-01T10:20:30Z", "2024-03-01T10:20:30"} {
		ts, err := dfapi.ParseTimestamp(value)
		require.NoError(t, err, value)
		assert.True(t, want.Equal(ts.Time), value)
	}

	day, err := dfapi.ParseTimestamp("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Day())

	for _, value := range []string{"", "0000-00-00 00:00:00"} {
		ts, err := dfapi.ParseTimestamp(value)
		require.NoError(t, err)
		assert.True(t, ts.IsZero())
	}

	_, err = dfapi.ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestTimestamp_JSON(t *testing.T) {
	t.Parallel()

	var audit dfapi.Audit

	err := json.Unmarshal([]byte(`{"created_date":"2023-12-31 23:59:59","last_modified_date":null,"created_by_id":1}`), &audit)
	require.NoError(t, err)
	require.NotNil(t, audit.CreatedDate)
	assert.Equal(t, "2023-12-31 23:59:59", audit.CreatedDate.String())
	assert.Nil(t, audit.LastModifiedDate)
	assert.Equal(t, 1, *audit.CreatedByID)

	data, err := json.Marshal(audit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"created_date":"2023-12-31 23:59:59","created_by_id":1}`, string(data))

	zero, err := json.Marshal(dfapi.Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))
}

func TestTimestamp_YAML(t *testing.T) {
	t.Parallel()

	ts := dfapi.NewTimestamp(time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC))

	out, err := yaml.Marshal(map[string]*dfapi.Timestamp{"at": ts})
	require.NoError(t, err)
	assert.Contains(t, string(out), "2024-01-02 03:04:05")

	tests := []struct {
		name string
		doc  string
		want time.Time
	}{
		{"server format", `last_use_date: "2024-01-02 03:04:05"`, ts.Time},
		{"unquoted server format", `last_use_date: 2024-01-02 03:04:05`, ts.Time},
		{"rfc3339", `last_use_date: 2024-01-02T03:04:05Z`, ts.Time},
		{"zero date", `last_use_date: "0000-00-00 00:00:00"`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var record dfapi.ProviderUser

			require.NoError(t, yaml.Unmarshal([]byte(tt.doc), &record))
			require.NotNil(t, record.LastUseDate)
			assert.True(t, tt.want.Equal(record.LastUseDate.Time))
		})
	}

	t.Run("null", func(t *testing.T) {
		t.Parallel()

		var record dfapi.ProviderUser

		require.NoError(t, yaml.Unmarshal([]byte("last_use_date: null"), &record))
		assert.Nil(t, record.LastUseDate)
	})

	t.Run("rejects unknown layout", func(t *testing.T) {
		t.Parallel()

		var record dfapi.ProviderUser

		require.Error(t, yaml.Unmarshal([]byte(`last_use_date: "yesterday"`), &record))
	})
}
