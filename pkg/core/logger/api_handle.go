package logger

import (
	"strings"
	"time"

	"linktrack/pkg/core/consts"
	errorc "linktrack/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	Logger *Log
}

// NewApiLogger 公共接口请求日志
func NewApiLogger(config Config) fiber.Handler {
	log := config.Logger.WithEntryName("API")

	return func(c *fiber.Ctx) error {
		path := strings.SplitN(c.OriginalURL(), "?", 2)[0]
		start := time.Now()

		err := c.Next()

		entry := log.WithField("status", c.Response().StatusCode()).
			WithField("latency", time.Since(start).Round(time.Millisecond)).
			WithField("method", c.Method()).
			WithField("path", path).
			WithField("ip", c.IP()).
			WithField("TraceId", c.Locals(consts.TraceKey))

		if err != nil {
			errc := errorc.ParseError(err)
			if errc.HTTPStatus() >= fiber.StatusInternalServerError {
				errc.ToLog(log.WithTrace(c.UserContext()).GetLogger())
			}
			entry = entry.WithField("Err", errc.RootCause())
		}
		entry.Debug("请求处理完毕")
		return err
	}
}
