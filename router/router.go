package router

import (
	"linktrack/app"
	"linktrack/pkg/core/fiber_handle"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/tracer"
	"linktrack/system/shorturl"

	"github.com/gofiber/fiber/v2"
)

// Register 负责集中注册所有 HTTP 路由。
// 只依赖 app.App 与 fiber.App，不包含业务逻辑，只做分组与路由绑定。
func Register(a *app.App, f *fiber.App, t tracer.Tracer, log *logger.Log) {
	traceMw := fiber_handle.NewApiTracer(fiber_handle.TracerConfig{Tracer: t})
	apiLog := logger.NewApiLogger(logger.Config{Logger: log})

	redirect := f.Group("/r", traceMw, apiLog)

	api := f.Group("/api", traceMw, apiLog)
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": "ok"})
	})

	admin := f.Group("/admin", traceMw, logger.NewAdminLogger(logger.AdminConfig{Logger: log}))

	// 注册短网址组件路由
	shorturl.RegisterRoutes(a.ShortURLModule, redirect, api, admin)
}
