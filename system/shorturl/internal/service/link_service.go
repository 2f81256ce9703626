package service

import (
	"context"
	"strings"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/model/common"
	"linktrack/pkg/core/mvc"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"
	"linktrack/utils"

	"gorm.io/gorm"
)

// SlugCache 短码维度的链接缓存
type SlugCache interface {
	Invalidate(ctx context.Context, slug string)
}

// LinkInput 创建与全量更新共用的可编辑字段
type LinkInput struct {
	Slug        string
	OriginalURL string
	Title       string
	Description string
	OwnerID     *int64
	ExpiresAt   *time.Time
	StartsIn    *time.Time
	ClickLimit  *int64
	Utm         model.UtmFields
}

// LinkService 短链接业务逻辑层，每次写操作都在同一事务中追加审计记录
type LinkService struct {
	*mvc.BaseService[model.Link]
	Dao      *dao.LinkDao
	AuditDao *dao.AuditDao
	cache    SlugCache
	log      *logger.Log
	err      *errorc.ErrorBuilder
}

func NewLinkService(linkDao *dao.LinkDao, auditDao *dao.AuditDao, cache SlugCache, log *logger.Log) *LinkService {
	return &LinkService{
		BaseService: mvc.NewBaseService[model.Link](linkDao.IBaseDao),
		Dao:         linkDao,
		AuditDao:    auditDao,
		cache:       cache,
		log:         log.WithEntryName("LinkService"),
		err:         errorc.NewErrorBuilder("LinkService"),
	}
}

// GenerateUniqueSlug 生成未被占用的短码（含已软删除的）
func (s *LinkService) GenerateUniqueSlug(ctx context.Context) (string, error) {
	for i := 0; i < defaultSlugRetries; i++ {
		slug, err := GenerateShortCode(defaultSlugLength)
		if err != nil {
			return "", s.err.New("生成短码失败", err)
		}
		if !utils.IsValidSlug(slug) {
			continue
		}
		exists, err := s.Dao.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", s.err.New("生成唯一短码失败（超过重试次数）", nil).Conflict()
}

func (s *LinkService) checkWindow(in *LinkInput) error {
	if in.StartsIn != nil && in.ExpiresAt != nil && !in.StartsIn.Before(*in.ExpiresAt) {
		return s.err.New("生效时间必须早于过期时间", nil).ValidWithCtx()
	}
	return nil
}

// Create 未指定短码时自动生成，指定的短码已存在时返回冲突
func (s *LinkService) Create(ctx context.Context, in *LinkInput, actor model.Actor) (*model.Link, error) {
	if err := s.checkWindow(in); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug != "" {
		if !utils.IsValidSlug(slug) {
			return nil, s.err.New("短码格式不合法或为保留字", nil).ValidWithCtx()
		}
		exists, err := s.Dao.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, s.err.New("短码已存在", nil).Conflict()
		}
	} else {
		generated, err := s.GenerateUniqueSlug(ctx)
		if err != nil {
			return nil, err
		}
		slug = generated
	}

	link := &model.Link{
		Slug:        slug,
		OriginalURL: in.OriginalURL,
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
		StartsIn:    in.StartsIn,
		ClickLimit:  in.ClickLimit,
		UtmSource:   in.Utm.Source,
		UtmMedium:   in.Utm.Medium,
		UtmCampaign: in.Utm.Campaign,
		UtmTerm:     in.Utm.Term,
		UtmContent:  in.Utm.Content,
	}

	err := s.Dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Dao.WithTx(tx).Create(ctx, link); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, link.ID, model.AuditActionCreate, nil, link, actor)
	})
	if err != nil {
		// 并发创建同一短码时由唯一索引兜底
		if exists, _ := s.Dao.ExistsBySlug(ctx, slug); exists && in.Slug != "" {
			return nil, s.err.New("短码已存在", err).Conflict()
		}
		return nil, err
	}
	s.invalidate(ctx, slug)
	return link, nil
}

// Update 全量替换可编辑字段，短码不可修改
func (s *LinkService) Update(ctx context.Context, id int64, in *LinkInput, actor model.Actor) (*model.Link, error) {
	if err := s.checkWindow(in); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"original_url": in.OriginalURL,
		"title":        in.Title,
		"description":  in.Description,
		"expires_at":   in.ExpiresAt,
		"starts_in":    in.StartsIn,
		"click_limit":  in.ClickLimit,
		"utm_source":   in.Utm.Source,
		"utm_medium":   in.Utm.Medium,
		"utm_campaign": in.Utm.Campaign,
		"utm_term":     in.Utm.Term,
		"utm_content":  in.Utm.Content,
	}
	return s.update(ctx, id, fields, actor)
}

// SetActive 启用或停用
func (s *LinkService) SetActive(ctx context.Context, id int64, active bool, actor model.Actor) (*model.Link, error) {
	return s.update(ctx, id, map[string]interface{}{"is_active": active}, actor)
}

func (s *LinkService) update(ctx context.Context, id int64, fields map[string]interface{}, actor model.Actor) (*model.Link, error) {
	var after *model.Link
	err := s.Dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
		linkDao := s.Dao.WithTx(tx)
		before, err := linkDao.FindById(ctx, id)
		if err != nil {
			return err
		}
		if _, err := linkDao.UpdateById(ctx, id, fields); err != nil {
			return err
		}
		after, err = linkDao.FindById(ctx, id)
		if err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, id, model.AuditActionUpdate, before, after, actor)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, after.Slug)
	return after, nil
}

// Delete force 为 true 时物理删除链接及其点击记录，否则软删除
func (s *LinkService) Delete(ctx context.Context, id int64, force bool, actor model.Actor) error {
	var slug string
	err := s.Dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
		linkDao := s.Dao.WithTx(tx)
		before, err := linkDao.FindById(ctx, id)
		if err != nil {
			return err
		}
		slug = before.Slug
		if force {
			err = linkDao.HardDelete(ctx, id)
		} else {
			err = linkDao.DeleteById(ctx, id)
		}
		if err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, id, model.AuditActionDelete, before, nil, actor)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, slug)
	return nil
}

// GetBySlug 公开查询，大小写敏感
func (s *LinkService) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	link, err := s.Dao.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if link.Slug != slug {
		return nil, s.err.New("短链接不存在", nil).NotFound()
	}
	return link, nil
}

func (s *LinkService) List(ctx context.Context, filter dao.LinkFilter, page *mvc.Page) ([]*model.Link, int64, error) {
	return s.Dao.FindPage(ctx, page, filter.Scope)
}

func (s *LinkService) ListAudits(ctx context.Context, linkID int64, page *mvc.Page) ([]*model.LinkAudit, int64, error) {
	return s.AuditDao.ListByLinkID(ctx, linkID, page)
}

func (s *LinkService) writeAudit(ctx context.Context, tx *gorm.DB, linkID int64, action model.AuditAction,
	before, after *model.Link, actor model.Actor) error {
	audit := &model.LinkAudit{
		LinkID:    linkID,
		Action:    action,
		ActorID:   actor.ID,
		Actor:     actor.Name,
		IP:        actor.IP,
		UserAgent: truncate(actor.UserAgent, 1024),
	}
	var err error
	if before != nil {
		if audit.Before, err = common.ToJSON(before); err != nil {
			return s.err.New("序列化审计快照失败", err)
		}
	}
	if after != nil {
		if audit.After, err = common.ToJSON(after); err != nil {
			return s.err.New("序列化审计快照失败", err)
		}
	}
	return s.AuditDao.WithTx(tx).Create(ctx, audit)
}

func (s *LinkService) invalidate(ctx context.Context, slug string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, slug)
	}
}
