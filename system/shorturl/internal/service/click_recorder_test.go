package service

import (
	"net/url"
	"testing"
	"time"

	"linktrack/pkg/core/consts"
	"linktrack/system/shorturl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRecorder(db *gorm.DB, provider GeoProvider, env string) *ClickRecorder {
	log := testLog()
	clickDao := newTestClickDao(db)
	return NewClickRecorder(
		NewGeoResolver(provider, nil, env, log),
		NewDeviceParser(log),
		NewTemporalEnricher(),
		NewBehaviorAnalyzer(clickDao, log),
		NewUtmExtractor(),
		clickDao,
		log,
	)
}

func TestClickRecorder_Record(t *testing.T) {
	db := newTestDB(t)
	link := seedLink(t, db, "rec001", nil)
	provider := &stubProvider{geo: &model.GeoData{Country: "Japan", IsoCode: "JP", City: "Tokyo", Timezone: "Asia/Tokyo"}}
	r := newTestRecorder(db, provider, consts.EnvProd)

	// 2025-03-03 01:00 UTC 为东京周一 10 点
	at := time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	cc := &model.ClickContext{
		IP:             "203.0.113.7",
		UserAgent:      "Mozilla/5.0 (iPad; CPU OS 13_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1",
		Referer:        "https://www.google.com/search?q=x",
		AcceptLanguage: "ja-JP",
		Query:          url.Values{"utm_source": {"newsletter"}, "utm_campaign": {"spring"}},
		ReceivedAt:     at,
		ResponseTime:   15 * time.Millisecond,
	}

	id, geo := r.Record(bg, link, cc)
	require.NotZero(t, id)
	assert.Equal(t, "JP", geo.IsoCode)
	assert.Equal(t, 1, provider.calls)

	click, err := newTestClickDao(db).FindByID(bg, id)
	require.NoError(t, err)
	assert.Equal(t, link.ID, click.LinkID)
	assert.Len(t, click.EventID, 36)
	assert.Equal(t, "JP", click.IsoCode)
	assert.Equal(t, "JPY", click.Currency)
	assert.Equal(t, model.DeviceTablet, click.DeviceType)
	assert.Equal(t, 10, click.HourOfDay)
	assert.Equal(t, 1, click.DayOfWeek)
	assert.True(t, click.IsBusinessHours)
	assert.False(t, click.IsWeekend)
	assert.Equal(t, model.SourceSearch, click.ClickSource)
	assert.False(t, click.IsReturnVisitor)
	assert.Equal(t, 1, click.SessionClicks)
	assert.Equal(t, int64(15), click.ResponseTimeMs)
	require.NotNil(t, click.Utm)
	assert.Equal(t, "newsletter", click.Utm.UtmSource)
	assert.Equal(t, "spring", click.Utm.UtmCampaign)

	// 同一 IP 再次点击
	cc.ReceivedAt = at.Add(10 * time.Minute)
	cc.Query = nil
	id2, _ := r.Record(bg, link, cc)
	require.NotZero(t, id2)
	second, err := newTestClickDao(db).FindByID(bg, id2)
	require.NoError(t, err)
	assert.True(t, second.IsReturnVisitor)
	assert.Equal(t, 2, second.SessionClicks)
	assert.Nil(t, second.Utm)
}

func TestClickRecorder_LocalTimeSurvivesStorage(t *testing.T) {
	db := newTestDB(t)
	link := seedLink(t, db, "rec004", nil)
	provider := &stubProvider{geo: &model.GeoData{Country: "Japan", IsoCode: "JP", Timezone: "Asia/Tokyo"}}
	r := newTestRecorder(db, provider, consts.EnvProd)

	// UTC 周日 16:00，东京已是周一 01:00
	at := time.Date(2025, 1, 5, 16, 0, 0, 0, time.UTC)
	id, _ := r.Record(bg, link, &model.ClickContext{IP: "203.0.113.9", ReceivedAt: at})
	require.NotZero(t, id)

	var raw string
	require.NoError(t, db.Raw("SELECT local_time FROM shorturl_clicks WHERE id = ?", id).Scan(&raw).Error)
	assert.Equal(t, "2025-01-06 01:00:00", raw)

	click, err := newTestClickDao(db).FindByID(bg, id)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", click.LocalTime.Location().String())
	assert.Equal(t, 1, click.LocalTime.Hour())
	assert.Equal(t, time.Monday, click.LocalTime.Weekday())
	assert.True(t, click.LocalTime.Equal(at))
	assert.False(t, click.IsWeekend)
	assert.Equal(t, WeekendFromLocal(click.LocalTime.Time), click.IsWeekend)
	assert.Equal(t, BusinessHoursFromLocal(click.LocalTime.Time), click.IsBusinessHours)
	assert.Equal(t, click.LocalTime.Hour(), click.HourOfDay)
}

func TestClickRecorder_LocalhostInDev(t *testing.T) {
	db := newTestDB(t)
	link := seedLink(t, db, "rec002", nil)
	provider := &stubProvider{}
	r := newTestRecorder(db, provider, consts.EnvDev)

	device := model.DeviceInfo{DeviceType: model.DeviceBot, IsBot: true, Browser: "x", OS: "y"}
	id, _ := r.Record(bg, link, &model.ClickContext{IP: "127.0.0.1", Device: &device})
	require.NotZero(t, id)
	assert.Zero(t, provider.calls)

	click, err := newTestClickDao(db).FindByID(bg, id)
	require.NoError(t, err)
	assert.Equal(t, "Localhost", click.Country)
	assert.Equal(t, "UTC", click.Timezone)
	assert.True(t, click.IsBot)
	assert.Equal(t, model.SourceDirect, click.ClickSource)
}

func TestClickRecorder_FailureReturnsZero(t *testing.T) {
	db := newTestDB(t)
	link := seedLink(t, db, "rec003", nil)
	r := newTestRecorder(db, nil, consts.EnvProd)
	require.NoError(t, db.Migrator().DropTable(&model.ClickUtm{}, &model.Click{}))

	id, _ := r.Record(bg, link, &model.ClickContext{IP: "8.8.8.8"})
	assert.Zero(t, id)
	id, _ = r.Record(bg, nil, &model.ClickContext{})
	assert.Zero(t, id)
}
