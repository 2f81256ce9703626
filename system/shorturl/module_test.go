package shorturl

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linktrack/pkg/core/config"
	"linktrack/pkg/core/counter"
	"linktrack/pkg/core/fiber_handle"
	"linktrack/pkg/core/security"
	internalapp "linktrack/system/shorturl/internal/app"
	"linktrack/system/shorturl/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/cache/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	app    *fiber.App
	module *Module
	db     *gorm.DB
	auth   *security.AdminAuth
}

func newTestEnv(t *testing.T, rl config.RateLimitConfig) *testEnv {
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

	a, err := internalapp.NewAppWithDeps(internalapp.Deps{
		DB:    db,
		RDB:   rdb,
		Cache: cache.New(&cache.Options{Redis: rdb}),
		Env:   "dev",
		Redirect: config.RedirectConfig{
			Workers:       1,
			QueueSize:     16,
			BotPreview:    true,
			PublicBaseURL: "https://s.test",
		},
	})
	require.NoError(t, err)

	auth := security.NewAdminAuth([]byte("test-secret"), time.Hour)
	m := NewModuleWith(a, auth, counter.New(rdb), rl)
	t.Cleanup(func() { _ = m.Close(context.Background()) })

	f := fiber.New(fiber.Config{ErrorHandler: fiber_handle.ErrHandler})
	RegisterRoutes(m, f.Group("/r"), f.Group("/api"), f.Group("/admin"))
	return &testEnv{app: f, module: m, db: db, auth: auth}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers map[string]string) (int, gjson.Result, string) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, gjson.ParseBytes(raw), resp.Header.Get(fiber.HeaderLocation)
}

func (e *testEnv) adminHeaders(t *testing.T, roles ...string) map[string]string {
	token, _, err := e.auth.CreateAdminToken(&security.AdminClaims{ID: 7, Account: "ops", Roles: roles})
	require.NoError(t, err)
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

// drain 关闭点击队列，等待异步记录落库
func (e *testEnv) drain(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.module.Close(ctx))
}

func TestRedirect_ClickLimitEndToEnd(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})
	h := env.adminHeaders(t, "admin:link:create")

	status, body, _ := env.do(t, fiber.MethodPost, "/admin/links",
		`{"slug":"abc123","originalUrl":"https://example.com/landing","clickLimit":1}`, h)
	require.Equal(t, fiber.StatusCreated, status, body.Raw)
	assert.Equal(t, "abc123", body.Get("data.slug").String())
	assert.Equal(t, int64(1), body.Get("data.clickLimit").Int())

	status, _, location := env.do(t, fiber.MethodGet, "/r/abc123?utm_source=mail", "", map[string]string{
		fiber.HeaderUserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
		fiber.HeaderReferer:   "https://www.google.com/search?q=x",
	})
	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, "https://example.com/landing", location)

	status, body, _ = env.do(t, fiber.MethodGet, "/r/abc123", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, int64(404), body.Get("status").Int())
	assert.Equal(t, "链接不存在或不可用", body.Get("message").String())

	env.drain(t)

	var link model.Link
	require.NoError(t, env.db.Where("slug = ?", "abc123").First(&link).Error)
	assert.Equal(t, int64(1), link.Clicks)

	var clicks []model.Click
	require.NoError(t, env.db.Where("link_id = ?", link.ID).Find(&clicks).Error)
	require.Len(t, clicks, 1)
	assert.Equal(t, "search", clicks[0].ClickSource)
}

func TestRedirect_UnknownAndInactiveShareResponse(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})
	link := &model.Link{Slug: "off", OriginalURL: "https://example.com", IsActive: true}
	require.NoError(t, env.db.Create(link).Error)
	require.NoError(t, env.db.Model(link).Update("is_active", false).Error)

	s1, b1, _ := env.do(t, fiber.MethodGet, "/r/missing", "", nil)
	s2, b2, _ := env.do(t, fiber.MethodGet, "/r/off", "", nil)
	assert.Equal(t, fiber.StatusNotFound, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, b1.Raw, b2.Raw)
}

func TestRedirect_BotGetsPreview(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})
	require.NoError(t, env.db.Create(&model.Link{
		Slug:        "prev01",
		OriginalURL: "https://example.com/article",
		Title:       "Launch",
		IsActive:    true,
	}).Error)

	req := httptest.NewRequest(fiber.MethodGet, "/r/prev01", nil)
	req.Header.Set(fiber.HeaderUserAgent, "Twitterbot/1.0")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, string(raw), `property="og:title"`)
	assert.Contains(t, string(raw), "Launch")
}

func TestLinkAPI_CreateAndPublicGet(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})

	status, body, _ := env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com/a","title":"A"}`, nil)
	require.Equal(t, fiber.StatusCreated, status, body.Raw)
	slug := body.Get("data.slug").String()
	assert.Len(t, slug, 6)
	assert.Equal(t, "https://s.test/r/"+slug, body.Get("data.shortUrl").String())
	assert.False(t, body.Get("data.ownerId").Exists() && body.Get("data.ownerId").Type != gjson.Null)

	status, body, _ = env.do(t, fiber.MethodGet, "/api/links/"+slug, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "A", body.Get("data.title").String())
	assert.False(t, body.Get("data.originalUrl").Exists())
}

func TestLinkAPI_CreateValidation(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})

	status, _, _ := env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"ftp://example.com"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com","slug":"bad slug"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com","slug":"taken"}`, nil)
	require.Equal(t, fiber.StatusCreated, status)
	status, _, _ = env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com","slug":"taken"}`, nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLinkAPI_CreateRateLimited(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{Enabled: true, CreateLimit: 1, WindowSeconds: 60})

	status, _, _ := env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com/1"}`, nil)
	require.Equal(t, fiber.StatusCreated, status)
	status, _, _ = env.do(t, fiber.MethodPost, "/api/links", `{"originalUrl":"https://example.com/2"}`, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}

func TestLinkAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})

	status, _, _ := env.do(t, fiber.MethodGet, "/admin/links", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/admin/links", `{"originalUrl":"https://example.com"}`, env.adminHeaders(t, "admin:link:read"))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestLinkAdmin_CRUD(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})
	h := env.adminHeaders(t, security.SuperRole)

	status, body, _ := env.do(t, fiber.MethodPost, "/admin/links", `{"slug":"promo","originalUrl":"https://example.com/p","clickLimit":5}`, h)
	require.Equal(t, fiber.StatusCreated, status, body.Raw)
	id := body.Get("data.id").String()
	assert.Equal(t, int64(7), body.Get("data.ownerId").Int())
	assert.Equal(t, int64(5), body.Get("data.clickLimit").Int())

	status, body, _ = env.do(t, fiber.MethodGet, "/admin/links?pageNum=1&size=10", "", h)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(1), body.Get("data.total").Int())
	assert.Equal(t, "promo", body.Get("data.list.0.slug").String())

	status, body, _ = env.do(t, fiber.MethodPut, "/admin/links/"+id, `{"originalUrl":"https://example.com/q","title":"Q"}`, h)
	require.Equal(t, fiber.StatusOK, status, body.Raw)
	assert.Equal(t, "https://example.com/q", body.Get("data.originalUrl").String())
	assert.Equal(t, "promo", body.Get("data.slug").String())

	status, body, _ = env.do(t, fiber.MethodPut, "/admin/links/"+id+"/status", `{"isActive":false}`, h)
	require.Equal(t, fiber.StatusOK, status, body.Raw)
	assert.False(t, body.Get("data.isActive").Bool())

	status, _, _ = env.do(t, fiber.MethodGet, "/r/promo", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body, _ = env.do(t, fiber.MethodGet, "/admin/links/"+id+"/audits", "", h)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(3), body.Get("data.total").Int())

	status, body, _ = env.do(t, fiber.MethodGet, "/admin/links/"+id+"/stats?days=7", "", h)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body.Get("data.daily").Array(), 7)

	status, _, _ = env.do(t, fiber.MethodDelete, "/admin/links/"+id, "", h)
	require.Equal(t, fiber.StatusOK, status)
	status, _, _ = env.do(t, fiber.MethodGet, "/admin/links/"+id, "", h)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = env.do(t, fiber.MethodGet, "/admin/links/abc", "", h)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLinkAdmin_CreateWithPlainDateTime(t *testing.T) {
	env := newTestEnv(t, config.RateLimitConfig{})
	h := env.adminHeaders(t, "admin:link:create")

	status, body, _ := env.do(t, fiber.MethodPost, "/admin/links",
		`{"slug":"old","originalUrl":"https://example.com","expiresAt":"2000-01-01 00:00:00"}`, h)
	require.Equal(t, fiber.StatusCreated, status, body.Raw)
	assert.Equal(t, "2000-01-01T00:00:00Z", body.Get("data.expiresAt").String())

	status, _, _ = env.do(t, fiber.MethodGet, "/r/old", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = env.do(t, fiber.MethodPost, "/admin/links",
		`{"originalUrl":"https://example.com","startsIn":"2030-01-02","expiresAt":"2030-01-01"}`, h)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
