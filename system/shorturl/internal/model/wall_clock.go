package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const wallClockLayout = "2006-01-02 15:04:05"

// WallClock 访问者本地的钟面时间，按字符串落库，不经过驱动的时区换算
type WallClock struct {
	time.Time
}

func NewWallClock(t time.Time) WallClock {
	return WallClock{Time: t}
}

// Value 只写年月日时分秒，丢弃时区
func (w WallClock) Value() (driver.Value, error) {
	if w.Time.IsZero() {
		return nil, nil
	}
	return w.Time.Format(wallClockLayout), nil
}

// Scan 读出的时间先挂在 UTC 上，由 Anchor 绑定真实时区
func (w *WallClock) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		w.Time = time.Time{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		w.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), 0, time.UTC)
		return nil
	default:
		return fmt.Errorf("无法扫描本地时间: %T", value)
	}
	if s == "" {
		w.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(wallClockLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("无法解析本地时间 %q: %w", s, err)
	}
	w.Time = t
	return nil
}

// Anchor 保持钟面读数不变，换到 loc
func (w WallClock) Anchor(loc *time.Location) WallClock {
	if w.Time.IsZero() || loc == nil {
		return w
	}
	t := w.Time
	return WallClock{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)}
}
