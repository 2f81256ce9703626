package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"linktrack/pkg/core/counter"
	"linktrack/pkg/core/logger"

	"github.com/redis/go-redis/v9"
)

const (
	redirectMetricPrefix = "metrics:redirect:"
	droppedMetricKey     = "metrics:clickqueue:dropped"
)

// MetricsCollector 按短码统计跳转次数，计数存放在 redis 固定时间桶中
type MetricsCollector struct {
	counter *counter.Counter
	rdb     redis.Cmdable
	now     func() time.Time
	log     *logger.Log
}

func NewMetricsCollector(rdb redis.Cmdable, log *logger.Log) *MetricsCollector {
	return &MetricsCollector{
		counter: counter.New(rdb),
		rdb:     rdb,
		now:     time.Now,
		log:     log.WithEntryName("MetricsCollector"),
	}
}

func redirectPrefix(slug string) string {
	return redirectMetricPrefix + slug
}

func countryKey(slug string, at time.Time) string {
	return counter.Day.Key(redirectPrefix(slug)+":country", at)
}

// RecordRedirect 计数失败只记日志
func (m *MetricsCollector) RecordRedirect(ctx context.Context, slug, country string, at time.Time) {
	if err := m.counter.IncrAll(ctx, redirectPrefix(slug), at, counter.Minute, counter.Hour, counter.Day); err != nil {
		m.log.WithErr(err).WithSlug(slug).Warn("跳转计数失败")
		return
	}
	if country == "" {
		return
	}
	key := countryKey(slug, at)
	pipe := m.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, strings.ToUpper(country), 1)
	pipe.Expire(ctx, key, counter.Day.Keep)
	if _, err := pipe.Exec(ctx); err != nil {
		m.log.WithErr(err).WithSlug(slug).Warn("国家维度计数失败")
	}
}

// RecordDrop 点击队列已满时丢弃的任务数
func (m *MetricsCollector) RecordDrop(ctx context.Context) {
	if _, err := m.counter.Incr(ctx, counter.Day.Key(droppedMetricKey, m.now()), counter.Day.Keep); err != nil {
		m.log.WithErr(err).Warn("丢弃计数失败")
	}
}

// RedirectCounts 最近 60 分钟、24 小时、7 天的跳转次数，按时间升序
type RedirectCounts struct {
	Minutes   []int64          `json:"minutes"`
	Hours     []int64          `json:"hours"`
	Days      []int64          `json:"days"`
	Today     int64            `json:"today"`
	Countries map[string]int64 `json:"countries"`
	Dropped   int64            `json:"dropped"`
}

func (m *MetricsCollector) GetCounts(ctx context.Context, slug string) (*RedirectCounts, error) {
	now := m.now()
	prefix := redirectPrefix(slug)
	out := &RedirectCounts{Countries: map[string]int64{}}

	var err error
	if out.Minutes, err = m.counter.Series(ctx, prefix, counter.Minute, now, 60); err != nil {
		return nil, err
	}
	if out.Hours, err = m.counter.Series(ctx, prefix, counter.Hour, now, 24); err != nil {
		return nil, err
	}
	if out.Days, err = m.counter.Series(ctx, prefix, counter.Day, now, 7); err != nil {
		return nil, err
	}
	out.Today = out.Days[len(out.Days)-1]

	countries, err := m.rdb.HGetAll(ctx, countryKey(slug, now)).Result()
	if err != nil {
		return nil, err
	}
	for cc, v := range countries {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr == nil {
			out.Countries[cc] = n
		}
	}

	if out.Dropped, err = m.counter.Get(ctx, counter.Day.Key(droppedMetricKey, now)); err != nil {
		return nil, err
	}
	return out, nil
}
