package service

import (
	"time"

	"linktrack/system/shorturl/internal/model"
)

// TemporalEnricher 把点击时间换算到访问者所在时区
type TemporalEnricher struct{}

func NewTemporalEnricher() *TemporalEnricher {
	return &TemporalEnricher{}
}

// Enrich 时区为空或无法识别时按 UTC 计算
func (e *TemporalEnricher) Enrich(utc time.Time, tz string) model.TemporalInfo {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	local := utc.In(loc)
	return model.TemporalInfo{
		HourOfDay:       local.Hour(),
		DayOfWeek:       isoWeekday(local),
		DayOfMonth:      local.Day(),
		Month:           int(local.Month()),
		Year:            local.Year(),
		LocalTime:       local,
		IsWeekend:       WeekendFromLocal(local),
		IsBusinessHours: BusinessHoursFromLocal(local),
	}
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekendFromLocal 周六、周日
func WeekendFromLocal(t time.Time) bool {
	return isoWeekday(t) >= 6
}

// BusinessHoursFromLocal 9 点到 17 点（含）
func BusinessHoursFromLocal(t time.Time) bool {
	h := t.Hour()
	return h >= 9 && h <= 17
}
