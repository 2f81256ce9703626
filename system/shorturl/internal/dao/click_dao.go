package dao

import (
	"context"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickDao 点击记录数据访问层
type ClickDao struct {
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

func NewClickDao(db *gorm.DB, log *logger.Log) *ClickDao {
	return &ClickDao{
		log: log.WithEntryName("ClickDao"),
		err: errorc.NewErrorBuilder("ClickDao"),
		db:  db,
	}
}

// CreateWithUtm 在同一事务中写入点击及其 UTM 记录
func (d *ClickDao) CreateWithUtm(ctx context.Context, click *model.Click, utm *model.ClickUtm) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(click).Error; err != nil {
			return d.err.New("写入点击记录失败", err).DB()
		}
		if utm == nil {
			return nil
		}
		utm.ClickID = click.ID
		if err := tx.Create(utm).Error; err != nil {
			return d.err.New("写入点击UTM记录失败", err).DB()
		}
		return nil
	})
}

// FindByID 同时加载 UTM 记录
func (d *ClickDao) FindByID(ctx context.Context, id int64) (*model.Click, error) {
	var click model.Click
	if err := d.db.WithContext(ctx).Preload("Utm").First(&click, id).Error; err != nil {
		return nil, d.err.New("查询点击记录失败", err).DB()
	}
	return &click, nil
}

// CountByIPSince 统计 IP 在 [since, until) 内的点击数
func (d *ClickDao) CountByIPSince(ctx context.Context, ip string, since, until time.Time) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Click{}).
		Where("ip = ? AND clicked_at >= ? AND clicked_at < ?", ip, since, until).
		Count(&count).Error
	if err != nil {
		return 0, d.err.New("统计IP点击次数失败", err).DB()
	}
	return count, nil
}

func (d *ClickDao) CountByLinkID(ctx context.Context, linkID int64) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Click{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		return 0, d.err.New("统计点击次数失败", err).DB()
	}
	return count, nil
}

// ListRecentByLinkID 最近的点击记录
func (d *ClickDao) ListRecentByLinkID(ctx context.Context, linkID int64, limit int) ([]*model.Click, error) {
	var results []*model.Click
	err := d.db.WithContext(ctx).Where("link_id = ?", linkID).
		Order("clicked_at DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, d.err.New("查询点击记录失败", err).DB()
	}
	return results, nil
}

// ListClickedAtByLinkID 区间内的点击时间，按天聚合在内存中完成以兼容不同数据库的日期函数
func (d *ClickDao) ListClickedAtByLinkID(ctx context.Context, linkID int64, start, end time.Time) ([]time.Time, error) {
	var times []time.Time
	err := d.db.WithContext(ctx).Model(&model.Click{}).
		Where("link_id = ? AND clicked_at >= ? AND clicked_at < ?", linkID, start, end).
		Order("clicked_at ASC").
		Pluck("clicked_at", &times).Error
	if err != nil {
		return nil, d.err.New("按日期统计点击次数失败", err).DB()
	}
	return times, nil
}
