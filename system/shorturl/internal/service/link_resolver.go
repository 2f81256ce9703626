package service

import (
	"context"
	"fmt"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"

	"github.com/go-redis/cache/v9"
)

const linkCacheTTL = 5 * time.Minute

func linkCacheKey(slug string) string {
	return fmt.Sprintf("shorturl:link:slug:%s", slug)
}

// LinkResolver 按短码查找可用的短链接并占用一次点击额度
type LinkResolver struct {
	dao   *dao.LinkDao
	cache *cache.Cache
	now   func() time.Time
	log   *logger.Log
	err   *errorc.ErrorBuilder
}

// NewLinkResolver cache 为空时直接查库
func NewLinkResolver(linkDao *dao.LinkDao, c *cache.Cache, log *logger.Log) *LinkResolver {
	return &LinkResolver{
		dao:   linkDao,
		cache: c,
		now:   time.Now,
		log:   log.WithEntryName("LinkResolver"),
		err:   errorc.NewErrorBuilder("LinkResolver"),
	}
}

// SetClock 替换时间来源
func (r *LinkResolver) SetClock(now func() time.Time) {
	r.now = now
}

// Resolve 依次检查 不存在 > 已停用 > 已过期 > 未生效 > 达到上限。
// 预期内的失败返回 *model.ResolveError
func (r *LinkResolver) Resolve(ctx context.Context, slug string) (*model.Link, error) {
	link, err := r.load(ctx, slug)
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, model.NewResolveError(slug, model.ReasonNotFound)
		}
		return nil, err
	}
	// 部分数据库排序规则大小写不敏感
	if link.Slug != slug {
		return nil, model.NewResolveError(slug, model.ReasonNotFound)
	}

	now := r.now()
	switch {
	case !link.IsActive:
		return nil, model.NewResolveError(slug, model.ReasonInactive)
	case link.IsExpired(now):
		return nil, model.NewResolveError(slug, model.ReasonExpired)
	case link.IsNotStarted(now):
		return nil, model.NewResolveError(slug, model.ReasonNotStarted)
	case link.IsLimitReached():
		return nil, model.NewResolveError(slug, model.ReasonLimitReached)
	}

	granted, err := r.dao.IncrementClicksWithinLimit(ctx, link.ID)
	if err != nil {
		r.log.WithErr(err).WithSlug(slug).Warn("点击计数更新失败，继续跳转")
		return link, nil
	}
	if !granted {
		r.Invalidate(ctx, slug)
		return nil, model.NewResolveError(slug, model.ReasonLimitReached)
	}
	link.Clicks++
	return link, nil
}

func (r *LinkResolver) load(ctx context.Context, slug string) (*model.Link, error) {
	if r.cache == nil {
		return r.dao.FindBySlug(ctx, slug)
	}
	var link *model.Link
	err := r.cache.Once(&cache.Item{
		Ctx:   ctx,
		Key:   linkCacheKey(slug),
		Value: &link,
		TTL:   linkCacheTTL,
		Do: func(*cache.Item) (interface{}, error) {
			return r.dao.FindBySlug(ctx, slug)
		},
	})
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, r.err.New("短链接不存在", nil).NotFound()
	}
	return link, nil
}

// Invalidate 清除短码对应的缓存
func (r *LinkResolver) Invalidate(ctx context.Context, slug string) {
	if r == nil || r.cache == nil || slug == "" {
		return
	}
	if err := r.cache.Delete(ctx, linkCacheKey(slug)); err != nil && !errorc.IsNotFound(err) {
		r.log.WithErr(err).WithField("cache_key", linkCacheKey(slug)).Warn("清除短链接缓存失败")
	}
}
