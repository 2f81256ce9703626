package http

import (
	"strconv"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/mvc"
	"linktrack/pkg/core/result"
	"linktrack/pkg/core/security"
	"linktrack/pkg/core/util"
	"linktrack/system/shorturl/api/dto"
	internalapp "linktrack/system/shorturl/internal/app"
	"linktrack/system/shorturl/internal/model"
	"linktrack/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	RoleLinkCreate = "admin:link:create"
	RoleLinkRead   = "admin:link:read"
	RoleLinkUpdate = "admin:link:update"
	RoleLinkDelete = "admin:link:delete"
)

// LinkAdminController 短链接后台管理
type LinkAdminController struct {
	app  *internalapp.App
	auth *security.AdminAuth
	err  *errorc.ErrorBuilder
	log  *logger.Log
}

func NewLinkAdminController(app *internalapp.App, auth *security.AdminAuth) *LinkAdminController {
	return &LinkAdminController{
		app:  app,
		auth: auth,
		err:  errorc.NewErrorBuilder("LinkAdminController"),
		log:  logger.GetLogger().WithEntryName("LinkAdminController"),
	}
}

func (c *LinkAdminController) RegisterRoutes(admin fiber.Router) {
	links := admin.Group("/links")
	links.Post("/", c.auth.RequireAdminAuth(RoleLinkCreate), c.CreateLink)
	links.Get("/", c.auth.RequireAdminAuth(RoleLinkRead), c.ListLinks)
	links.Get("/:id", c.auth.RequireAdminAuth(RoleLinkRead), c.GetLink)
	links.Put("/:id", c.auth.RequireAdminAuth(RoleLinkUpdate), c.UpdateLink)
	links.Put("/:id/status", c.auth.RequireAdminAuth(RoleLinkUpdate), c.UpdateLinkStatus)
	links.Delete("/:id", c.auth.RequireAdminAuth(RoleLinkDelete), c.DeleteLink)
	links.Get("/:id/audits", c.auth.RequireAdminAuth(RoleLinkRead), c.ListAudits)
	links.Get("/:id/stats", c.auth.RequireAdminAuth(RoleLinkRead), c.GetLinkStats)
}

func (c *LinkAdminController) parseID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, c.err.New("ID参数错误", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	return id, nil
}

// actor 操作人来自令牌，IP 与 UA 来自请求
func actor(ctx *fiber.Ctx) model.Actor {
	a := model.Actor{
		Name:      security.GetAdminActor(ctx),
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	}
	if claims, err := security.GetAdminClaims(ctx); err == nil {
		id := claims.ID
		a.ID = &id
	}
	return a
}

func (c *LinkAdminController) CreateLink(ctx *fiber.Ctx) error {
	var req internalapp.CreateLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}

	a := actor(ctx)
	link, err := c.app.CreateLink(util.Context(ctx), &req, a.ID, a)
	if err != nil {
		return err
	}
	return result.Created(ctx, dto.FromLink(link, c.app.PublicBaseURL()))
}

func (c *LinkAdminController) ListLinks(ctx *fiber.Ctx) error {
	var req internalapp.ListLinksRequest
	if err := ctx.QueryParser(&req); err != nil {
		return c.err.New("解析查询参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	links, total, err := c.app.ListLinks(util.Context(ctx), &req)
	if err != nil {
		return err
	}
	return result.OK(ctx, mvc.NewPageResult(dto.FromLinks(links, c.app.PublicBaseURL()), total, &req.Page))
}

func (c *LinkAdminController) GetLink(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	link, err := c.app.GetLink(util.Context(ctx), id)
	if err != nil {
		return err
	}
	return result.OK(ctx, dto.FromLink(link, c.app.PublicBaseURL()))
}

func (c *LinkAdminController) UpdateLink(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	var req internalapp.LinkFields
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}

	link, err := c.app.UpdateLink(util.Context(ctx), id, &req, actor(ctx))
	if err != nil {
		return err
	}
	return result.OK(ctx, dto.FromLink(link, c.app.PublicBaseURL()))
}

func (c *LinkAdminController) UpdateLinkStatus(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	var req internalapp.UpdateLinkStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}

	link, err := c.app.UpdateLinkStatus(util.Context(ctx), id, *req.IsActive, actor(ctx))
	if err != nil {
		return err
	}
	return result.OK(ctx, dto.FromLink(link, c.app.PublicBaseURL()))
}

// DeleteLink ?force=true 时物理删除
func (c *LinkAdminController) DeleteLink(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	force := ctx.QueryBool("force", false)
	err = c.app.DeleteLink(util.Context(ctx), id, force, actor(ctx))
	return result.Once(ctx, "删除成功", err)
}

func (c *LinkAdminController) ListAudits(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	var page mvc.Page
	if err := ctx.QueryParser(&page); err != nil {
		return c.err.New("解析查询参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx))
	}
	audits, total, err := c.app.ListLinkAudits(util.Context(ctx), id, &page)
	if err != nil {
		return err
	}
	return result.OK(ctx, mvc.NewPageResult(audits, total, &page))
}

func (c *LinkAdminController) GetLinkStats(ctx *fiber.Ctx) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return err
	}
	stats, err := c.app.GetLinkStats(util.Context(ctx), id, ctx.QueryInt("days", 30))
	if err != nil {
		return err
	}
	return result.OK(ctx, fiber.Map{
		"link":           dto.FromLink(stats.Link, c.app.PublicBaseURL()),
		"clicks":         stats.Link.Clicks,
		"recordedClicks": stats.RecordedClicks,
		"daily":          stats.Daily,
		"recent":         dto.FromClicks(stats.Recent),
		"redirects":      stats.Redirects,
	})
}
