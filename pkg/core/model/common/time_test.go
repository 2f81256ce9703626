package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTime_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Time *FlexTime `json:"time"`
	}

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339 带时区", `{"time":"2025-11-09T17:44:55+08:00"}`, time.Date(2025, 11, 9, 9, 44, 55, 0, time.UTC)},
		{"空格分隔", `{"time":"2025-11-09 17:44:55"}`, time.Date(2025, 11, 9, 17, 44, 55, 0, time.UTC)},
		{"仅日期", `{"time":"2025-11-09"}`, time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			require.NotNil(t, p.Time)
			assert.True(t, tt.want.Equal(p.Time.Time), "got %v", p.Time.Time)
			assert.Equal(t, time.UTC, p.Time.Location())
		})
	}

	t.Run("null 与空串", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"time":""}`), &p))
		assert.Nil(t, p.Time.ToTime())

		p = payload{}
		require.NoError(t, json.Unmarshal([]byte(`{"time":null}`), &p))
		assert.Nil(t, p.Time.ToTime())
	})

	t.Run("无法解析", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"time":"yesterday"}`), &p))
	})
}

func TestFlexTime_MarshalJSON(t *testing.T) {
	ft := NewFlexTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("CST", 8*3600)))
	data, err := json.Marshal(ft)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-01T19:04:05Z"`, string(data))

	var zero FlexTime
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestJSON_ScanValue(t *testing.T) {
	src, err := ToJSON(struct {
		Slug  string `json:"slug"`
		Limit int    `json:"limit"`
	}{"abc123", 5})
	require.NoError(t, err)

	v, err := src.Value()
	require.NoError(t, err)

	var dst JSON
	require.NoError(t, dst.Scan(v))
	assert.Equal(t, "abc123", dst["slug"])
	assert.EqualValues(t, 5, dst["limit"])

	require.NoError(t, dst.Scan(nil))
	assert.Nil(t, dst)
}
