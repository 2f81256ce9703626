package http

import (
	"errors"
	"net/url"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/util"
	internalapp "linktrack/system/shorturl/internal/app"
	"linktrack/system/shorturl/internal/model"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

const unresolvedMessage = "链接不存在或不可用"

// RedirectController 短链跳转
type RedirectController struct {
	app *internalapp.App
	err *errorc.ErrorBuilder
	log *logger.Log
}

func NewRedirectController(app *internalapp.App) *RedirectController {
	return &RedirectController{
		app: app,
		err: errorc.NewErrorBuilder("RedirectController"),
		log: logger.GetLogger().WithEntryName("RedirectController"),
	}
}

// RegisterRoutes redirect 为挂载在 /r 下的分组
func (c *RedirectController) RegisterRoutes(redirect fiber.Router, limiter fiber.Handler) {
	redirect.Get("/:slug", limiter, c.Redirect)
}

// Redirect 爬虫返回预览页，其余 302 跳转；不可用的短链统一返回 404
func (c *RedirectController) Redirect(ctx *fiber.Ctx) error {
	received := time.Now()
	slug := fiberutils.CopyString(ctx.Params("slug"))
	cc := clickContext(ctx, received)

	outcome, err := c.app.Pipeline.Handle(util.Context(ctx), slug, cc)
	if err != nil {
		var re *model.ResolveError
		if errors.As(err, &re) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  fiber.StatusNotFound,
				"message": unresolvedMessage,
			})
		}
		return err
	}

	ctx.Set(fiber.HeaderCacheControl, "no-store")
	if outcome.Kind == internalapp.OutcomePreview {
		ctx.Type("html", "utf-8")
		return ctx.Send(outcome.HTML)
	}
	return ctx.Redirect(outcome.Location, fiber.StatusFound)
}

// clickContext 请求结束后 fiber 会复用底层缓冲区，异步使用的字符串必须复制
func clickContext(ctx *fiber.Ctx, received time.Time) *model.ClickContext {
	query, _ := url.ParseQuery(string(ctx.Request().URI().QueryString()))
	return &model.ClickContext{
		IP:             fiberutils.CopyString(ctx.IP()),
		UserAgent:      fiberutils.CopyString(ctx.Get(fiber.HeaderUserAgent)),
		Referer:        fiberutils.CopyString(ctx.Get(fiber.HeaderReferer)),
		AcceptLanguage: fiberutils.CopyString(ctx.Get(fiber.HeaderAcceptLanguage)),
		Query:          query,
		ReceivedAt:     received,
	}
}
