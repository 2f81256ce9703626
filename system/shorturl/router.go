package shorturl

import (
	controller "linktrack/system/shorturl/external/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册短网址组件的所有 HTTP 路由
func RegisterRoutes(m *Module, redirect, api, admin fiber.Router) {
	controller.NewRedirectController(m.internalApp).
		RegisterRoutes(redirect, m.limiter("redirect", m.rateLimit.RedirectLimit))

	controller.NewLinkAPIController(m.internalApp).
		RegisterRoutes(api, m.limiter("create", m.rateLimit.CreateLimit))

	controller.NewLinkAdminController(m.internalApp, m.auth).RegisterRoutes(admin)
}
