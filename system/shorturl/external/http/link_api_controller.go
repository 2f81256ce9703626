package http

import (
	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/result"
	"linktrack/pkg/core/util"
	"linktrack/system/shorturl/api/dto"
	internalapp "linktrack/system/shorturl/internal/app"
	"linktrack/system/shorturl/internal/model"
	"linktrack/utils"

	"github.com/gofiber/fiber/v2"
)

// LinkAPIController 匿名创建与公开查询
type LinkAPIController struct {
	app *internalapp.App
	err *errorc.ErrorBuilder
	log *logger.Log
}

func NewLinkAPIController(app *internalapp.App) *LinkAPIController {
	return &LinkAPIController{
		app: app,
		err: errorc.NewErrorBuilder("LinkAPIController"),
		log: logger.GetLogger().WithEntryName("LinkAPIController"),
	}
}

func (c *LinkAPIController) RegisterRoutes(api fiber.Router, createLimiter fiber.Handler) {
	links := api.Group("/links")
	links.Post("/", createLimiter, c.CreateLink)
	links.Get("/:slug", c.GetLink)
}

// CreateLink 匿名创建短链接
func (c *LinkAPIController) CreateLink(ctx *fiber.Ctx) error {
	var req internalapp.CreateLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}

	actor := model.Actor{Name: "anonymous", IP: ctx.IP(), UserAgent: ctx.Get(fiber.HeaderUserAgent)}
	link, err := c.app.CreateLink(util.Context(ctx), &req, nil, actor)
	if err != nil {
		return err
	}
	return result.Created(ctx, dto.FromLink(link, c.app.PublicBaseURL()))
}

// GetLink 公开信息，不返回目标地址
func (c *LinkAPIController) GetLink(ctx *fiber.Ctx) error {
	link, err := c.app.GetPublicLink(util.Context(ctx), ctx.Params("slug"))
	if err != nil {
		return err
	}
	return result.OK(ctx, dto.PublicFromLink(link, c.app.PublicBaseURL()))
}
