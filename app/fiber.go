package app

import (
	"context"

	"linktrack/base"
	"linktrack/pkg/core/counter"
	"linktrack/pkg/core/fiber_handle"
	"linktrack/pkg/core/start"

	"github.com/gofiber/fiber/v2"
)

// GetApp 创建 HTTP 服务并挂载健康检查与接口监控
func GetApp() *fiber.App {
	checkers := map[string]fiber_handle.HealthChecker{}
	if base.DB != nil {
		checkers["db"] = func(ctx context.Context) error {
			sqlDB, err := base.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if base.RDB != nil {
		checkers["redis"] = func(ctx context.Context) error {
			return base.RDB.Ping(ctx).Err()
		}
	}

	app := start.GetApp(base.Configures.Alerter, checkers)
	if base.RDB != nil {
		app.Use(start.UseMonitor(fiber_handle.NewRedisMonitorClient(counter.New(base.RDB), base.Logger)))
	}
	return app
}
