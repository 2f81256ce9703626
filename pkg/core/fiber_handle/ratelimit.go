package fiber_handle

import (
	"strconv"
	"time"

	"linktrack/pkg/core/counter"
	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"

	"github.com/gofiber/fiber/v2"
)

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	Counter *counter.Counter
	// Scope 区分不同的限流维度，如 redirect / create
	Scope  string
	Limit  int
	Window time.Duration
	// KeyFunc 默认按客户端 IP
	KeyFunc func(c *fiber.Ctx) string
	Logger  *logger.Log
}

// RateLimit 按 ratelimit:<scope>:<key>:<bucket> 计数，超限返回 429。
// redis 不可用时放行。
func RateLimit(config RateLimitConfig) fiber.Handler {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	// 桶按整秒划分，窗口至少 1 秒
	if config.Window < time.Second {
		config.Window = time.Second
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	if config.Logger == nil {
		config.Logger = logger.GetLogger()
	}
	log := config.Logger.WithEntryName("RateLimit")
	err := errorc.NewErrorBuilder("RateLimit")
	windowSeconds := int64(config.Window / time.Second)

	return func(c *fiber.Ctx) error {
		if config.Counter == nil || config.Limit <= 0 {
			return c.Next()
		}
		now := time.Now()
		bucket := now.Unix() / windowSeconds
		key := "ratelimit:" + config.Scope + ":" + config.KeyFunc(c) + ":" + strconv.FormatInt(bucket, 10)

		count, incrErr := config.Counter.Incr(c.UserContext(), key, config.Window+time.Second)
		if incrErr != nil {
			log.WithErr(incrErr).Warn("限流计数失败，放行请求")
			return c.Next()
		}

		remaining := int64(config.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(config.Limit) {
			reset := (bucket+1)*windowSeconds - now.Unix()
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(reset, 10))
			return err.New("请求过于频繁，请稍后再试", nil).TooMany()
		}
		return c.Next()
	}
}
