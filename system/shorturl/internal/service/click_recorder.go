package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/model"

	"github.com/google/uuid"
)

// ClickRecorder 汇总各项解析结果并写入点击记录，失败只记日志
type ClickRecorder struct {
	geo      *GeoResolver
	device   *DeviceParser
	temporal *TemporalEnricher
	behavior *BehaviorAnalyzer
	utm      *UtmExtractor
	clicks   *dao.ClickDao
	log      *logger.Log
	err      *errorc.ErrorBuilder
}

func NewClickRecorder(geo *GeoResolver, device *DeviceParser, temporal *TemporalEnricher,
	behavior *BehaviorAnalyzer, utm *UtmExtractor, clicks *dao.ClickDao, log *logger.Log) *ClickRecorder {
	return &ClickRecorder{
		geo:      geo,
		device:   device,
		temporal: temporal,
		behavior: behavior,
		utm:      utm,
		clicks:   clicks,
		log:      log.WithEntryName("ClickRecorder"),
		err:      errorc.NewErrorBuilder("ClickRecorder"),
	}
}

// Record 返回点击记录 ID 与解析出的地理信息，写入失败时 ID 为 0
func (r *ClickRecorder) Record(ctx context.Context, link *model.Link, cc *model.ClickContext) (id int64, geo model.GeoData) {
	defer func() {
		if rec := recover(); rec != nil {
			r.err.New(fmt.Sprintf("记录点击异常: %v", rec), nil).WithTraceID(ctx).ToLog(r.log.GetLogger())
			id = 0
		}
	}()
	if link == nil || cc == nil {
		return 0, geo
	}

	at := cc.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	geo = r.geo.Locate(ctx, cc.IP)

	var (
		wg       sync.WaitGroup
		device   model.DeviceInfo
		behavior model.BehaviorInfo
		utm      model.UtmFields
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		if cc.Device != nil {
			device = *cc.Device
			return
		}
		device = r.device.Parse(cc.UserAgent)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.WithField("panic", rec).Warn("行为分析异常")
				behavior = model.DefaultBehavior()
			}
		}()
		behavior = r.behavior.Analyze(ctx, cc.IP, link.ID, cc.Referer, at)
	}()
	go func() {
		defer wg.Done()
		utm = r.utm.Extract(cc.Query, cc.Referer)
	}()
	temporal := r.temporal.Enrich(at, geo.Timezone)
	wg.Wait()

	click := buildClick(link.ID, cc, at, geo, device, temporal, behavior)
	var utmRow *model.ClickUtm
	if !utm.IsEmpty() {
		utmRow = model.NewClickUtm(utm)
	}

	if err := r.clicks.CreateWithUtm(ctx, click, utmRow); err != nil {
		errorc.ParseError(err).WithTraceID(ctx).ToLog(r.log.WithSlug(link.Slug).GetLogger(), "写入点击记录失败")
		return 0, geo
	}
	return click.ID, geo
}

func buildClick(linkID int64, cc *model.ClickContext, at time.Time, geo model.GeoData, device model.DeviceInfo,
	temporal model.TemporalInfo, behavior model.BehaviorInfo) *model.Click {
	return &model.Click{
		LinkID:    linkID,
		EventID:   uuid.NewString(),
		IP:        cc.IP,
		UserAgent: truncate(cc.UserAgent, 1024),
		Referer:   truncate(cc.Referer, 2048),

		Country:    geo.Country,
		IsoCode:    geo.IsoCode,
		City:       geo.City,
		State:      geo.State,
		StateName:  geo.StateName,
		PostalCode: geo.PostalCode,
		Latitude:   geo.Latitude,
		Longitude:  geo.Longitude,
		Timezone:   geo.Timezone,
		Continent:  geo.Continent,
		Currency:   geo.Currency,

		DeviceType:     device.DeviceType,
		Browser:        device.Browser,
		BrowserVersion: device.BrowserVersion,
		OS:             device.OS,
		OSVersion:      device.OSVersion,
		IsMobile:       device.IsMobile,
		IsTablet:       device.IsTablet,
		IsDesktop:      device.IsDesktop,
		IsBot:          device.IsBot,

		HourOfDay:       temporal.HourOfDay,
		DayOfWeek:       temporal.DayOfWeek,
		DayOfMonth:      temporal.DayOfMonth,
		Month:           temporal.Month,
		Year:            temporal.Year,
		LocalTime:       model.NewWallClock(temporal.LocalTime),
		IsWeekend:       temporal.IsWeekend,
		IsBusinessHours: temporal.IsBusinessHours,

		IsReturnVisitor: behavior.IsReturnVisitor,
		SessionClicks:   behavior.SessionClicks,
		ClickSource:     behavior.ClickSource,

		ResponseTimeMs: cc.ResponseTime.Milliseconds(),
		AcceptLanguage: truncate(cc.AcceptLanguage, 255),
		ClickedAt:      at,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
