// Package counter 基于 redis 的固定时间桶计数，INCR 与 EXPIRE 在同一 pipeline 中提交。
// 计数是近似值：桶边界上的并发请求可能落入相邻桶。
package counter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Granularity 时间桶粒度
type Granularity struct {
	Name   string
	Window time.Duration
	// Keep 桶过期时间，需大于 Window 以便事后读取
	Keep time.Duration
}

var (
	Minute = Granularity{Name: "minute", Window: time.Minute, Keep: 2 * time.Hour}
	Hour   = Granularity{Name: "hour", Window: time.Hour, Keep: 48 * time.Hour}
	Day    = Granularity{Name: "day", Window: 24 * time.Hour, Keep: 35 * 24 * time.Hour}
)

// Bucket 返回 t 所在桶的编号
func (g Granularity) Bucket(t time.Time) int64 {
	return t.Unix() / int64(g.Window/time.Second)
}

// Key 拼装桶键：<prefix>:<granularity>:<bucket>
func (g Granularity) Key(prefix string, t time.Time) string {
	return prefix + ":" + g.Name + ":" + strconv.FormatInt(g.Bucket(t), 10)
}

type Counter struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) *Counter {
	return &Counter{rdb: rdb}
}

// Incr 对一个桶计数并设置过期，返回计数后的值
func (c *Counter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// IncrAll 对同一前缀的多个粒度一次性计数
func (c *Counter) IncrAll(ctx context.Context, prefix string, at time.Time, grans ...Granularity) error {
	pipe := c.rdb.Pipeline()
	for _, g := range grans {
		key := g.Key(prefix, at)
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, g.Keep)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Get 读取一个桶，不存在视为 0
func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// Series 读取最近 n 个桶，按时间升序
func (c *Counter) Series(ctx context.Context, prefix string, g Granularity, now time.Time, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = g.Key(prefix, now.Add(-time.Duration(n-1-i)*g.Window))
	}
	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i, v := range values {
		if s, ok := v.(string); ok {
			parsed, perr := strconv.ParseInt(s, 10, 64)
			if perr != nil {
				return nil, fmt.Errorf("parse counter %s: %w", keys[i], perr)
			}
			out[i] = parsed
		}
	}
	return out, nil
}
