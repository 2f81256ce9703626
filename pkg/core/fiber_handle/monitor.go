package fiber_handle

import (
	"context"
	"strconv"
	"strings"
	"time"

	"linktrack/pkg/core/consts"
	"linktrack/pkg/core/counter"
	"linktrack/pkg/core/logger"

	"github.com/gofiber/fiber/v2"
)

// APICallMetrics 单次接口调用指标
type APICallMetrics struct {
	Timestamp  time.Time
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	TraceID    string
	ClientIP   string
}

// MonitorClient 指标接收方
type MonitorClient interface {
	RecordAPICall(ctx context.Context, m *APICallMetrics)
}

type MonitorConfig struct {
	Client MonitorClient
}

// FilterFunc 返回 false 时跳过监控
type FilterFunc func(c *fiber.Ctx) bool

// NewAPIMonitorWithFilters 接口监控中间件
func NewAPIMonitorWithFilters(config MonitorConfig, filters ...FilterFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.Client == nil {
			return c.Next()
		}
		for _, filter := range filters {
			if !filter(c) {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()
		if err != nil {
			// 错误尚未经过 ErrorHandler，状态码以错误为准
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m := &APICallMetrics{
			Timestamp:  start,
			Method:     c.Method(),
			Path:       path,
			StatusCode: status,
			Duration:   time.Since(start),
			ClientIP:   c.IP(),
		}
		if traceID, ok := c.Locals(consts.TraceKey).(string); ok {
			m.TraceID = traceID
		}
		config.Client.RecordAPICall(c.UserContext(), m)
		return err
	}
}

// OnlyPathStartWith 仅监控指定前缀
func OnlyPathStartWith(paths ...string) FilterFunc {
	return func(c *fiber.Ctx) bool {
		for _, p := range paths {
			if strings.HasPrefix(c.Path(), p) {
				return true
			}
		}
		return false
	}
}

// SkipMethods 跳过指定 HTTP 方法
func SkipMethods(methods ...string) FilterFunc {
	skip := make(map[string]bool, len(methods))
	for _, m := range methods {
		skip[strings.ToUpper(m)] = true
	}
	return func(c *fiber.Ctx) bool {
		return !skip[c.Method()]
	}
}

// RedisMonitorClient 以分钟桶记录各路由的调用次数与状态分布
type RedisMonitorClient struct {
	counter *counter.Counter
	log     *logger.Log
}

func NewRedisMonitorClient(c *counter.Counter, log *logger.Log) *RedisMonitorClient {
	return &RedisMonitorClient{counter: c, log: log.WithEntryName("APIMonitor")}
}

func (r *RedisMonitorClient) RecordAPICall(ctx context.Context, m *APICallMetrics) {
	class := strconv.Itoa(m.StatusCode/100) + "xx"
	prefix := "metrics:api:" + m.Method + ":" + m.Path + ":" + class
	if err := r.counter.IncrAll(ctx, prefix, m.Timestamp, counter.Minute, counter.Hour); err != nil {
		r.log.WithErr(err).Debug("记录接口指标失败")
	}
	if m.Duration > time.Second {
		r.log.WithField("path", m.Path).WithField("latency", m.Duration).WithField("TraceId", m.TraceID).Warn("慢请求")
	}
}
