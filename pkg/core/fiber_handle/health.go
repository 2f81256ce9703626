package fiber_handle

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker 依赖探活，例如数据库或 redis 的 Ping
type HealthChecker func(ctx context.Context) error

type HealthCheckConfig struct {
	Path     string
	Checkers map[string]HealthChecker
}

func HealthCheck(config HealthCheckConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() != config.Path {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		failed := fiber.Map{}
		for name, check := range config.Checkers {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "failed": failed})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "up"})
	}
}
