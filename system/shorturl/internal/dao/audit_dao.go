package dao

import (
	"context"
	"time"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/mvc"
	"linktrack/system/shorturl/internal/model"

	"gorm.io/gorm"
)

// AuditDao 审计日志数据访问层
type AuditDao struct {
	mvc.IBaseDao[model.LinkAudit]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

func NewAuditDao(db *gorm.DB, log *logger.Log) *AuditDao {
	return &AuditDao{
		IBaseDao: mvc.NewGormDao[model.LinkAudit](db),
		log:      log.WithEntryName("AuditDao"),
		err:      errorc.NewErrorBuilder("AuditDao"),
		db:       db,
	}
}

// WithTx 绑定到外部事务
func (d *AuditDao) WithTx(tx *gorm.DB) *AuditDao {
	return &AuditDao{
		IBaseDao: d.IBaseDao.WithTx(tx),
		log:      d.log,
		err:      d.err,
		db:       tx,
	}
}

func (d *AuditDao) ListByLinkID(ctx context.Context, linkID int64, page *mvc.Page) ([]*model.LinkAudit, int64, error) {
	page.Sort = "id DESC"
	return d.FindPage(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("link_id = ?", linkID)
	})
}

// DeleteBefore 分批删除早于 cutoff 的审计记录，返回删除条数
func (d *AuditDao) DeleteBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var idList []int64
		err := d.db.WithContext(ctx).Model(&model.LinkAudit{}).
			Where("created_at < ?", cutoff).Order("id ASC").Limit(batchSize).
			Pluck("id", &idList).Error
		if err != nil {
			return total, d.err.New("查询过期审计记录失败", err).DB()
		}
		if len(idList) == 0 {
			return total, nil
		}
		result := d.db.WithContext(ctx).Where("id IN ?", idList).Delete(&model.LinkAudit{})
		if result.Error != nil {
			return total, d.err.New("删除过期审计记录失败", result.Error).DB()
		}
		total += result.RowsAffected
		if len(idList) < batchSize {
			return total, nil
		}
	}
}
