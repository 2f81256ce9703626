package app

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"linktrack/pkg/core/config"
	"linktrack/pkg/core/consts"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestPipeline_DrainRecordsEveryClick(t *testing.T) {
	a, db := newTestApp(t, config.RedirectConfig{Workers: 2, QueueSize: 32}, config.RetentionConfig{})
	link := seedLink(t, db, "drain1", nil)

	for i := 0; i < 5; i++ {
		out, err := a.Pipeline.Handle(bg, "drain1", &model.ClickContext{IP: "203.0.113.9", UserAgent: chromeUA})
		require.NoError(t, err)
		assert.Equal(t, OutcomeRedirect, out.Kind)
	}
	drain(t, a)

	var clicks int64
	require.NoError(t, db.Model(&model.Click{}).Where("link_id = ?", link.ID).Count(&clicks).Error)
	assert.Equal(t, int64(5), clicks)

	var reloaded model.Link
	require.NoError(t, db.First(&reloaded, link.ID).Error)
	assert.Equal(t, int64(5), reloaded.Clicks)

	counts, err := a.Metrics.GetCounts(bg, "drain1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Today)
}

func TestPipeline_UnresolvedSlugIsResolveError(t *testing.T) {
	a, _ := newTestApp(t, config.RedirectConfig{}, config.RetentionConfig{})

	out, err := a.Pipeline.Handle(bg, "nope", &model.ClickContext{IP: "203.0.113.9"})
	assert.Nil(t, out)
	var re *model.ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, model.ReasonNotFound, re.Reason)
}

func TestPipeline_ClosedQueueStillRedirects(t *testing.T) {
	a, db := newTestApp(t, config.RedirectConfig{Workers: 1, QueueSize: 4}, config.RetentionConfig{})
	link := seedLink(t, db, "late", nil)
	drain(t, a)

	out, err := a.Pipeline.Handle(bg, "late", &model.ClickContext{IP: "203.0.113.9", UserAgent: chromeUA})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/late", out.Location)

	var clicks int64
	require.NoError(t, db.Model(&model.Click{}).Where("link_id = ?", link.ID).Count(&clicks).Error)
	assert.Zero(t, clicks)
}

type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Lookup(_ context.Context, _ net.IP) (*model.GeoData, error) {
	p.calls.Add(1)
	return &model.GeoData{Country: "Germany", IsoCode: "DE", Timezone: "Europe/Berlin"}, nil
}

func TestPipeline_LocatesOncePerClick(t *testing.T) {
	provider := &countingProvider{}
	a, db := newTestAppWith(t, func(d *Deps) {
		d.Cache = nil
		d.Env = consts.EnvProd
		d.GeoProvider = provider
		d.Redirect = config.RedirectConfig{Workers: 1, QueueSize: 8}
	})
	seedLink(t, db, "geo001", nil)

	for i := 0; i < 3; i++ {
		_, err := a.Pipeline.Handle(bg, "geo001", &model.ClickContext{
			IP:         "203.0.113.20",
			UserAgent:  chromeUA,
			ReceivedAt: time.Now(),
		})
		require.NoError(t, err)
	}
	drain(t, a)

	// 无缓存时每次点击只查询一次地理信息，计数复用同一结果
	assert.Equal(t, int32(3), provider.calls.Load())
	counts, err := a.Metrics.GetCounts(bg, "geo001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Countries["DE"])
}

func TestPipeline_FullQueueCountsDrop(t *testing.T) {
	a, _ := newTestApp(t, config.RedirectConfig{}, config.RetentionConfig{})

	// 不启动 worker，队列容量为 1
	p := &RedirectPipeline{
		metrics: a.Metrics,
		jobs:    make(chan clickJob, 1),
		log:     logger.GetLogger(),
	}
	link := &model.Link{Slug: "full"}
	p.enqueue(bg, link, &model.ClickContext{})
	p.enqueue(bg, link, &model.ClickContext{})
	assert.Equal(t, 1, p.QueueLen())

	assert.Eventually(t, func() bool {
		counts, err := a.Metrics.GetCounts(bg, "full")
		return err == nil && counts.Dropped == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPipeline_BotPreview(t *testing.T) {
	a, db := newTestApp(t, config.RedirectConfig{BotPreview: true, PublicBaseURL: "https://s.test"}, config.RetentionConfig{})
	seedLink(t, db, "bot1", func(l *model.Link) { l.Title = "Hello" })

	out, err := a.Pipeline.Handle(bg, "bot1", &model.ClickContext{IP: "203.0.113.9", UserAgent: "facebookexternalhit/1.1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePreview, out.Kind)
	assert.Contains(t, string(out.HTML), `content="https://s.test/r/bot1"`)
}

func TestPipeline_BotWithoutPreviewRedirects(t *testing.T) {
	a, db := newTestApp(t, config.RedirectConfig{}, config.RetentionConfig{})
	seedLink(t, db, "bot2", nil)

	out, err := a.Pipeline.Handle(bg, "bot2", &model.ClickContext{IP: "203.0.113.9", UserAgent: "Googlebot/2.1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirect, out.Kind)
}

func TestBuildDestination(t *testing.T) {
	tests := []struct {
		name string
		link model.Link
		want string
	}{
		{
			name: "无默认 UTM 时原样返回",
			link: model.Link{OriginalURL: "https://example.com/a?x=1"},
			want: "https://example.com/a?x=1",
		},
		{
			name: "追加默认 UTM",
			link: model.Link{OriginalURL: "https://example.com/a", UtmSource: "news", UtmMedium: "email"},
			want: "https://example.com/a?utm_medium=email&utm_source=news",
		},
		{
			name: "目标地址已有的参数优先",
			link: model.Link{OriginalURL: "https://example.com/a?utm_source=ads", UtmSource: "news", UtmCampaign: "spring"},
			want: "https://example.com/a?utm_campaign=spring&utm_source=ads",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := tt.link
			assert.Equal(t, tt.want, BuildDestination(&link))
		})
	}
}
