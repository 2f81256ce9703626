package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemporalEnricher_Enrich(t *testing.T) {
	e := NewTemporalEnricher()
	// 2025-03-01 是周六
	utc := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)

	info := e.Enrich(utc, "Asia/Shanghai")
	assert.Equal(t, 10, info.HourOfDay)
	assert.Equal(t, 6, info.DayOfWeek)
	assert.Equal(t, 1, info.DayOfMonth)
	assert.Equal(t, 3, info.Month)
	assert.Equal(t, 2025, info.Year)
	assert.True(t, info.IsWeekend)
	assert.True(t, info.IsBusinessHours)

	info = e.Enrich(utc, "America/New_York")
	assert.Equal(t, 21, info.HourOfDay)
	assert.Equal(t, 5, info.DayOfWeek, "纽约仍是周五")
	assert.False(t, info.IsWeekend)
	assert.False(t, info.IsBusinessHours)
}

func TestTemporalEnricher_InvalidZoneFallsBackToUTC(t *testing.T) {
	e := NewTemporalEnricher()
	utc := time.Date(2025, 3, 2, 17, 59, 0, 0, time.UTC)

	for _, tz := range []string{"", "Mars/Olympus"} {
		info := e.Enrich(utc, tz)
		assert.Equal(t, 17, info.HourOfDay)
		assert.Equal(t, 7, info.DayOfWeek)
		assert.Equal(t, time.UTC, info.LocalTime.Location())
		assert.True(t, info.IsBusinessHours)
	}
}

func TestTemporalEnricher_FlagsRoundTrip(t *testing.T) {
	e := NewTemporalEnricher()
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for _, tz := range []string{"UTC", "Asia/Tokyo", "Europe/London", "Pacific/Auckland"} {
		for h := 0; h < 24*7; h += 5 {
			info := e.Enrich(start.Add(time.Duration(h)*time.Hour), tz)
			assert.Equal(t, WeekendFromLocal(info.LocalTime), info.IsWeekend)
			assert.Equal(t, BusinessHoursFromLocal(info.LocalTime), info.IsBusinessHours)
			assert.Equal(t, info.DayOfWeek >= 6, info.IsWeekend)
			assert.Equal(t, info.HourOfDay >= 9 && info.HourOfDay <= 17, info.IsBusinessHours)
		}
	}
}
