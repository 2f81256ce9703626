package dao

import (
	"context"
	"errors"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/mvc"
	"linktrack/system/shorturl/internal/model"

	"gorm.io/gorm"
)

// LinkDao 短链接数据访问层
type LinkDao struct {
	mvc.IBaseDao[model.Link]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

func NewLinkDao(db *gorm.DB, log *logger.Log) *LinkDao {
	return &LinkDao{
		IBaseDao: mvc.NewGormDao[model.Link](db),
		log:      log.WithEntryName("LinkDao"),
		err:      errorc.NewErrorBuilder("LinkDao"),
		db:       db,
	}
}

// WithTx 绑定到外部事务
func (d *LinkDao) WithTx(tx *gorm.DB) *LinkDao {
	return &LinkDao{
		IBaseDao: d.IBaseDao.WithTx(tx),
		log:      d.log,
		err:      d.err,
		db:       tx,
	}
}

// FindBySlug 软删除的记录不会返回
func (d *LinkDao) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var result model.Link
	err := d.db.WithContext(ctx).Where("slug = ?", slug).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, d.err.New("短链接不存在", err).NotFound()
		}
		return nil, d.err.New("查询短链接失败", err).DB()
	}
	return &result, nil
}

// ExistsBySlug 包含已软删除的记录，短码不可复用
func (d *LinkDao) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Unscoped().Model(&model.Link{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, d.err.New("检查短码是否存在失败", err).DB()
	}
	return count > 0, nil
}

// IncrementClicksWithinLimit 原子递增点击数，已达上限时不更新并返回 false
func (d *LinkDao) IncrementClicksWithinLimit(ctx context.Context, id int64) (bool, error) {
	result := d.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ? AND (click_limit IS NULL OR clicks < click_limit)", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return false, d.err.New("更新点击次数失败", result.Error).DB()
	}
	return result.RowsAffected > 0, nil
}

// HardDelete 物理删除短链接及其点击与 UTM 记录
func (d *LinkDao) HardDelete(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clickIDs := tx.Model(&model.Click{}).Select("id").Where("link_id = ?", id)
		if err := tx.Where("click_id IN (?)", clickIDs).Delete(&model.ClickUtm{}).Error; err != nil {
			return d.err.New("删除点击UTM记录失败", err).DB()
		}
		if err := tx.Where("link_id = ?", id).Delete(&model.Click{}).Error; err != nil {
			return d.err.New("删除点击记录失败", err).DB()
		}
		result := tx.Unscoped().Delete(&model.Link{}, id)
		if result.Error != nil {
			return d.err.New("删除短链接失败", result.Error).DB()
		}
		if result.RowsAffected == 0 {
			return d.err.New("要删除的短链接不存在", nil).NotFound()
		}
		return nil
	})
}

// LinkFilter 后台列表筛选条件
type LinkFilter struct {
	Keyword  string
	IsActive *bool
	OwnerID  *int64
}

func (f LinkFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		db = db.Where("slug LIKE ? OR original_url LIKE ? OR title LIKE ?", like, like, like)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
	}
	return db
}
