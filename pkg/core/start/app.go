package start

import (
	"fmt"

	"linktrack/pkg/core/fiber_handle"
	"linktrack/pkg/core/util"

	"github.com/gofiber/fiber/v2"
	recover2 "github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetApp checkers 为 /health 的依赖探活
func GetApp(alerter *util.OpsAlerter, checkers map[string]fiber_handle.HealthChecker) *fiber.App {
	app := fiber.New(
		fiber.Config{
			BodyLimit:    1 * 1024 * 1024,
			ErrorHandler: fiber_handle.ErrHandler,
			JSONEncoder:  json.Marshal,
			JSONDecoder:  json.Unmarshal,
			ProxyHeader:  fiber.HeaderXForwardedFor,
		})
	app.Use(fiber_handle.Cors())
	app.Use(recover2.New(recover2.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			_ = alerter.Send(util.Context(c), fmt.Sprintf("url：%s崩溃了。%+v", c.Path(), e))
		},
	}))
	app.Use(fiber_handle.HealthCheck(fiber_handle.HealthCheckConfig{Path: "/health", Checkers: checkers}))
	return app
}

func UseMonitor(client fiber_handle.MonitorClient) fiber.Handler {
	return fiber_handle.NewAPIMonitorWithFilters(fiber_handle.MonitorConfig{
		Client: client,
	}, fiber_handle.SkipMethods("OPTIONS"), fiber_handle.OnlyPathStartWith("/api", "/admin", "/r/"))
}
