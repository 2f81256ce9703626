package logger

import (
	"time"

	"linktrack/pkg/core/consts"
	errorc "linktrack/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

type AdminConfig struct {
	Logger *Log
}

// NewAdminLogger 管理端请求日志，额外记录请求体和操作人
func NewAdminLogger(config AdminConfig) fiber.Handler {
	log := config.Logger.WithEntryName("Admin")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		entry := log.WithField("status", c.Response().StatusCode()).
			WithField("latency", time.Since(start).Round(time.Millisecond)).
			WithField("method", c.Method()).
			WithField("path", c.OriginalURL()).
			WithField("user_id", c.Locals("user_id")).
			WithField("TraceId", c.Locals(consts.TraceKey))
		if c.Method() != fiber.MethodGet {
			entry = entry.WithField("req", string(c.Request().Body()))
		}

		if err != nil {
			errc := errorc.ParseError(err)
			errc.ToLog(log.WithTrace(c.UserContext()).GetLogger())
			entry = entry.WithField("Err", errc.RootCause())
		}
		entry.Info("管理端请求处理完毕")
		return err
	}
}
