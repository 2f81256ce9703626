package app

import (
	"context"

	"linktrack/pkg/core/model/common"
	"linktrack/pkg/core/mvc"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"
	"linktrack/system/shorturl/internal/service"
)

// CreateLinkRequest 创建短链接请求
type CreateLinkRequest struct {
	Slug string `json:"slug" validate:"omitempty,slug" comment:"短码"`
	LinkFields
}

// LinkFields 创建与更新共用的可编辑字段
type LinkFields struct {
	OriginalURL string           `json:"originalUrl" validate:"required,url,http_url,max=2048" comment:"目标地址"`
	Title       string           `json:"title" validate:"max=255" comment:"标题"`
	Description string           `json:"description" validate:"max=1000" comment:"描述"`
	// ExpiresAt 与 StartsIn 接受 RFC3339 或 "2006-01-02 15:04:05"，不带时区按 UTC 解释
	ExpiresAt   *common.FlexTime `json:"expiresAt" comment:"过期时间"`
	StartsIn    *common.FlexTime `json:"startsIn" comment:"生效时间"`
	ClickLimit  *int64           `json:"clickLimit" validate:"omitempty,min=1,max=1000000" comment:"点击上限"`
	UtmSource   string           `json:"utmSource" validate:"max=255"`
	UtmMedium   string           `json:"utmMedium" validate:"max=255"`
	UtmCampaign string           `json:"utmCampaign" validate:"max=255"`
	UtmTerm     string           `json:"utmTerm" validate:"max=255"`
	UtmContent  string           `json:"utmContent" validate:"max=255"`
}

// UpdateLinkStatusRequest 启用/停用
type UpdateLinkStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required" comment:"是否启用"`
}

// ListLinksRequest 后台列表查询
type ListLinksRequest struct {
	mvc.Page
	Keyword  string `query:"keyword"`
	IsActive *bool  `query:"isActive"`
	OwnerID  *int64 `query:"ownerId"`
}

func (f LinkFields) toInput(slug string, ownerID *int64) *service.LinkInput {
	return &service.LinkInput{
		Slug:        slug,
		OriginalURL: f.OriginalURL,
		Title:       f.Title,
		Description: f.Description,
		OwnerID:     ownerID,
		ExpiresAt:   f.ExpiresAt.ToTime(),
		StartsIn:    f.StartsIn.ToTime(),
		ClickLimit:  f.ClickLimit,
		Utm: model.UtmFields{
			Source:   f.UtmSource,
			Medium:   f.UtmMedium,
			Campaign: f.UtmCampaign,
			Term:     f.UtmTerm,
			Content:  f.UtmContent,
		},
	}
}

// CreateLink ownerID 为空表示匿名创建
func (a *App) CreateLink(ctx context.Context, req *CreateLinkRequest, ownerID *int64, actor model.Actor) (*model.Link, error) {
	return a.LinkService.Create(ctx, req.toInput(req.Slug, ownerID), actor)
}

func (a *App) UpdateLink(ctx context.Context, id int64, req *LinkFields, actor model.Actor) (*model.Link, error) {
	return a.LinkService.Update(ctx, id, req.toInput("", nil), actor)
}

func (a *App) UpdateLinkStatus(ctx context.Context, id int64, active bool, actor model.Actor) (*model.Link, error) {
	return a.LinkService.SetActive(ctx, id, active, actor)
}

func (a *App) DeleteLink(ctx context.Context, id int64, force bool, actor model.Actor) error {
	return a.LinkService.Delete(ctx, id, force, actor)
}

func (a *App) GetLink(ctx context.Context, id int64) (*model.Link, error) {
	return a.LinkService.FindById(ctx, id)
}

// GetPublicLink 公开查询，已软删除的链接不可见
func (a *App) GetPublicLink(ctx context.Context, slug string) (*model.Link, error) {
	return a.LinkService.GetBySlug(ctx, slug)
}

func (a *App) ListLinks(ctx context.Context, req *ListLinksRequest) ([]*model.Link, int64, error) {
	filter := dao.LinkFilter{Keyword: req.Keyword, IsActive: req.IsActive, OwnerID: req.OwnerID}
	return a.LinkService.List(ctx, filter, &req.Page)
}

func (a *App) ListLinkAudits(ctx context.Context, id int64, page *mvc.Page) ([]*model.LinkAudit, int64, error) {
	if _, err := a.LinkService.FindById(ctx, id); err != nil {
		return nil, 0, err
	}
	return a.LinkService.ListAudits(ctx, id, page)
}

// LinkStats 短链接统计：数据库中的每日点击与 redis 中的实时跳转计数
type LinkStats struct {
	Link           *model.Link
	RecordedClicks int64
	Daily          []service.DailyStat
	Recent         []*model.Click
	Redirects      *service.RedirectCounts
}

func (a *App) GetLinkStats(ctx context.Context, id int64, days int) (*LinkStats, error) {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	daily, err := a.StatsService.GetDailyStats(ctx, id, days)
	if err != nil {
		return nil, err
	}
	recorded, err := a.StatsService.TotalClicks(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := a.StatsService.RecentClicks(ctx, id, 20)
	if err != nil {
		return nil, err
	}

	stats := &LinkStats{Link: link, RecordedClicks: recorded, Daily: daily, Recent: recent}
	if a.Metrics != nil {
		counts, err := a.Metrics.GetCounts(ctx, link.Slug)
		if err != nil {
			a.log.WithErr(err).WithSlug(link.Slug).Warn("读取跳转计数失败")
		} else {
			stats.Redirects = counts
		}
	}
	return stats, nil
}
