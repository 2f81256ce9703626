package service

import (
	"context"
	"testing"
	"time"

	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 单连接内存库，保证所有查询落在同一个数据库上
func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Link{}, &model.Click{}, &model.ClickUtm{}, &model.LinkAudit{}))
	return db
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// newTestCache 不启用本地缓存层，便于直接检查 redis 中的键
func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	rdb, mr := newTestRedis(t)
	return cache.New(&cache.Options{Redis: rdb}), mr
}

func testLog() *logger.Log {
	return logger.GetLogger()
}

func seedLink(t *testing.T, db *gorm.DB, slug string, mutate func(*model.Link)) *model.Link {
	link := &model.Link{Slug: slug, OriginalURL: "https://example.com/" + slug, IsActive: true}
	if mutate != nil {
		mutate(link)
	}
	active := link.IsActive
	require.NoError(t, db.Create(link).Error)
	if !active {
		// is_active 带默认值，零值插入后会被回填为 true
		require.NoError(t, db.Model(link).Update("is_active", false).Error)
		link.IsActive = false
	}
	return link
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestLinkDao(db *gorm.DB) *dao.LinkDao {
	return dao.NewLinkDao(db, testLog())
}

var bg = context.Background()

func newTestClickDao(db *gorm.DB) *dao.ClickDao {
	return dao.NewClickDao(db, testLog())
}
