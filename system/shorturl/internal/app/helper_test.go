package app

import (
	"context"
	"testing"
	"time"

	"linktrack/pkg/core/config"
	"linktrack/system/shorturl/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var bg = context.Background()

func newTestApp(t *testing.T, redirect config.RedirectConfig, retention config.RetentionConfig) (*App, *gorm.DB) {
	return newTestAppWith(t, func(d *Deps) {
		d.Redirect = redirect
		d.Retention = retention
	})
}

func newTestAppWith(t *testing.T, mutate func(*Deps)) (*App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Link{}, &model.Click{}, &model.ClickUtm{}, &model.LinkAudit{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	d := Deps{
		DB:    db,
		RDB:   rdb,
		Cache: cache.New(&cache.Options{Redis: rdb}),
		Env:   "dev",
	}
	if mutate != nil {
		mutate(&d)
	}
	a, err := NewAppWithDeps(d)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(bg) })
	return a, db
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

func drain(t *testing.T, a *App) {
	ctx, cancel := context.WithTimeout(bg, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Pipeline.Shutdown(ctx))
}
