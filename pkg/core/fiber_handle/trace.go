package fiber_handle

import (
	"strings"

	"linktrack/pkg/core/consts"
	"linktrack/pkg/core/tracer"

	"github.com/gofiber/fiber/v2"
)

type TracerConfig struct {
	Tracer tracer.Tracer
}

// NewApiTracer 为每个请求生成 TraceID，写入 UserContext、Locals 和响应头
func NewApiTracer(config TracerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := strings.TrimPrefix(c.Path(), "/")
		if name == "" {
			name = "root"
		}

		ctx, traceID, finish := config.Tracer.StartTrace(c.UserContext(), name)
		defer finish()

		c.SetUserContext(ctx)
		c.Locals(consts.TraceKey, traceID)
		c.Set("X-Trace-Id", traceID)
		return c.Next()
	}
}
