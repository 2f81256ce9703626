package service

import (
	"context"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"
)

const (
	defaultStatsDays = 30
	maxStatsDays     = 365
	dayLayout        = "2006-01-02"
)

// StatsService 点击统计
type StatsService struct {
	ClickDao *dao.ClickDao
	now      func() time.Time
	log      *logger.Log
	err      *errorc.ErrorBuilder
}

func NewStatsService(clickDao *dao.ClickDao, log *logger.Log) *StatsService {
	return &StatsService{
		ClickDao: clickDao,
		now:      time.Now,
		log:      log.WithEntryName("StatsService"),
		err:      errorc.NewErrorBuilder("StatsService"),
	}
}

// SetClock 替换时间来源
func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

// DailyStat 每日点击数（UTC 日期）
type DailyStat struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// GetDailyStats 最近 days 天（含今天）的每日点击数，没有点击的日期为 0
func (s *StatsService) GetDailyStats(ctx context.Context, linkID int64, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	now := s.now().UTC()
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	startDate := endDate.AddDate(0, 0, -days)

	times, err := s.ClickDao.ListClickedAtByLinkID(ctx, linkID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, days)
	for _, t := range times {
		counts[t.UTC().Format(dayLayout)]++
	}

	stats := make([]DailyStat, 0, days)
	for current := startDate; current.Before(endDate); current = current.AddDate(0, 0, 1) {
		date := current.Format(dayLayout)
		stats = append(stats, DailyStat{Date: date, Clicks: counts[date]})
	}
	return stats, nil
}

func (s *StatsService) TotalClicks(ctx context.Context, linkID int64) (int64, error) {
	return s.ClickDao.CountByLinkID(ctx, linkID)
}

func (s *StatsService) RecentClicks(ctx context.Context, linkID int64, limit int) ([]*model.Click, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ClickDao.ListRecentByLinkID(ctx, linkID, limit)
}
