package shorturl

import (
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 自动执行短网址组件的数据库迁移
func AutoMigrate(db *gorm.DB, log *logger.Log) error {
	log.Info("开始迁移短网址组件表...")

	if err := db.AutoMigrate(
		&model.Link{},
		&model.Click{},
		&model.ClickUtm{},
		&model.LinkAudit{},
	); err != nil {
		log.WithErr(err).Error("短网址组件表迁移失败")
		return err
	}

	log.Info("短网址组件表迁移完成")
	return nil
}
