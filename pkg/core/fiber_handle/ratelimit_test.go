package fiber_handle

import (
	"net/http/httptest"
	"testing"
	"time"

	"linktrack/pkg/core/counter"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(t *testing.T, cfg RateLimitConfig) (*fiber.App, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	if cfg.Counter == nil {
		cfg.Counter = counter.New(rdb)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrHandler})
	app.Get("/x", RateLimit(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, mr
}

func get(t *testing.T, app *fiber.App, headers map[string]string) (int, string, string) {
	req := httptest.NewRequest(fiber.MethodGet, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("X-RateLimit-Remaining"), resp.Header.Get(fiber.HeaderRetryAfter)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	app, _ := newLimitedApp(t, RateLimitConfig{Scope: "test", Limit: 2, Window: time.Hour})

	status, remaining, _ := get(t, app, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1", remaining)

	status, remaining, _ = get(t, app, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "0", remaining)

	status, _, retryAfter := get(t, app, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.NotEmpty(t, retryAfter)
}

func TestRateLimit_SeparateKeys(t *testing.T) {
	app, _ := newLimitedApp(t, RateLimitConfig{
		Scope:  "test",
		Limit:  1,
		Window: time.Hour,
		KeyFunc: func(c *fiber.Ctx) string {
			return c.Get("X-Client")
		},
	})

	status, _, _ := get(t, app, map[string]string{"X-Client": "a"})
	assert.Equal(t, fiber.StatusOK, status)
	status, _, _ = get(t, app, map[string]string{"X-Client": "b"})
	assert.Equal(t, fiber.StatusOK, status)
	status, _, _ = get(t, app, map[string]string{"X-Client": "a"})
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}

func TestRateLimit_SetsWindowExpiry(t *testing.T) {
	app, mr := newLimitedApp(t, RateLimitConfig{Scope: "ttl", Limit: 5, Window: time.Minute})

	status, _, _ := get(t, app, nil)
	require.Equal(t, fiber.StatusOK, status)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "ratelimit:ttl:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRateLimit_SubSecondWindowClampedToOneSecond(t *testing.T) {
	app, mr := newLimitedApp(t, RateLimitConfig{Scope: "short", Limit: 100, Window: 200 * time.Millisecond})

	for i := 0; i < 3; i++ {
		status, _, _ := get(t, app, nil)
		assert.Equal(t, fiber.StatusOK, status)
	}

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.Contains(t, keys[0], "ratelimit:short:")
	assert.Equal(t, 2*time.Second, mr.TTL(keys[0]))
}

func TestRateLimit_FailOpenWhenRedisDown(t *testing.T) {
	app, mr := newLimitedApp(t, RateLimitConfig{Scope: "down", Limit: 1, Window: time.Hour})
	mr.Close()

	for i := 0; i < 3; i++ {
		status, _, _ := get(t, app, nil)
		assert.Equal(t, fiber.StatusOK, status)
	}
}

func TestRateLimit_DisabledWithoutCounter(t *testing.T) {
	app := fiber.New()
	app.Get("/x", RateLimit(RateLimitConfig{Limit: 1}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	for i := 0; i < 3; i++ {
		status, _, _ := get(t, app, nil)
		assert.Equal(t, fiber.StatusOK, status)
	}
}
