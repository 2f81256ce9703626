package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_RecordAndGet(t *testing.T) {
	rdb, mr := newTestRedis(t)
	m := NewMetricsCollector(rdb, testLog())
	now := time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)
	m.now = fixedClock(now)

	m.RecordRedirect(bg, "abc123", "jp", now)
	m.RecordRedirect(bg, "abc123", "JP", now.Add(-2*time.Minute))
	m.RecordRedirect(bg, "abc123", "", now)
	m.RecordRedirect(bg, "other1", "US", now)
	m.RecordDrop(bg)

	counts, err := m.GetCounts(bg, "abc123")
	require.NoError(t, err)
	assert.Len(t, counts.Minutes, 60)
	assert.Equal(t, int64(2), counts.Minutes[59])
	assert.Equal(t, int64(1), counts.Minutes[57])
	assert.Equal(t, int64(3), counts.Hours[23])
	assert.Equal(t, int64(3), counts.Today)
	assert.Equal(t, map[string]int64{"JP": 2}, counts.Countries)
	assert.Equal(t, int64(1), counts.Dropped)

	assert.True(t, mr.Exists("metrics:redirect:abc123:day:20188"))
}
