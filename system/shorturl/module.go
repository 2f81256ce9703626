package shorturl

import (
	"context"
	"time"

	"linktrack/base"
	"linktrack/pkg/core/config"
	"linktrack/pkg/core/counter"
	"linktrack/pkg/core/fiber_handle"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/security"
	internalapp "linktrack/system/shorturl/internal/app"

	"github.com/gofiber/fiber/v2"
)

// Module 短网址组件模块
type Module struct {
	internalApp *internalapp.App
	auth        *security.AdminAuth
	counter     *counter.Counter
	rateLimit   config.RateLimitConfig
	log         *logger.Log
}

// NewModule 使用全局基础设施创建
func NewModule() *Module {
	var c *counter.Counter
	if base.RDB != nil {
		c = counter.New(base.RDB)
	}
	return NewModuleWith(internalapp.NewApp(), base.AdminAuth, c, base.Configures.Config.RateLimit)
}

// NewModuleWith counter 为空时不限流
func NewModuleWith(app *internalapp.App, auth *security.AdminAuth, c *counter.Counter, rl config.RateLimitConfig) *Module {
	return &Module{
		internalApp: app,
		auth:        auth,
		counter:     c,
		rateLimit:   rl,
		log:         logger.GetLogger().WithEntryName("ShortURLModule"),
	}
}

// Close 排空点击队列并释放地理库
func (m *Module) Close(ctx context.Context) error {
	return m.internalApp.Close(ctx)
}

func (m *Module) limiter(scope string, limit int) fiber.Handler {
	if !m.rateLimit.Enabled || m.counter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	window := time.Duration(m.rateLimit.WindowSeconds) * time.Second
	return fiber_handle.RateLimit(fiber_handle.RateLimitConfig{
		Counter: m.counter,
		Scope:   scope,
		Limit:   limit,
		Window:  window,
		Logger:  m.log,
	})
}
