package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallClock_ValueDropsZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 东京周一 01:00，对应 UTC 周日 16:00
	w := NewWallClock(time.Date(2025, 1, 6, 1, 0, 0, 0, tokyo))
	v, err := w.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06 01:00:00", v)

	v, err = WallClock{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestWallClock_ScanAndAnchor(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	for _, raw := range []interface{}{"2025-01-06 01:00:00", []byte("2025-01-06 01:00:00")} {
		var w WallClock
		require.NoError(t, w.Scan(raw))
		anchored := w.Anchor(tokyo)
		assert.Equal(t, 1, anchored.Hour())
		assert.Equal(t, time.Monday, anchored.Weekday())
		assert.Equal(t, tokyo, anchored.Location())
		assert.True(t, anchored.Equal(time.Date(2025, 1, 5, 16, 0, 0, 0, time.UTC)))
	}

	// 驱动直接返回 time.Time 时只取钟面读数
	var w WallClock
	require.NoError(t, w.Scan(time.Date(2025, 1, 6, 1, 0, 0, 0, time.FixedZone("X", -5*3600))))
	assert.Equal(t, 1, w.Anchor(tokyo).Hour())

	require.NoError(t, w.Scan(nil))
	assert.True(t, w.IsZero())
	assert.Error(t, w.Scan("01/06/2025"))
	assert.Error(t, w.Scan(42))
}
