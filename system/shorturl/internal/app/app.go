package app

import (
	"io"

	"linktrack/base"
	"linktrack/pkg/core/config"
	errorc "linktrack/pkg/core/err"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/scheduler"
	"linktrack/system/shorturl/internal/dao"
	"linktrack/system/shorturl/internal/service"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps 组装短网址应用层所需的外部依赖，RDB/Cache/Scheduler 可为空
type Deps struct {
	DB        *gorm.DB
	RDB       redis.Cmdable
	Cache     *cache.Cache
	Scheduler *scheduler.Scheduler
	Env       string
	Geo       config.GeoConfig
	Redirect  config.RedirectConfig
	Retention config.RetentionConfig
	// GeoProvider 非空时覆盖 Geo 配置
	GeoProvider service.GeoProvider
	Log         *logger.Log
}

// App 短网址组件应用层
type App struct {
	LinkService  *service.LinkService
	Resolver     *service.LinkResolver
	StatsService *service.StatsService
	Metrics      *service.MetricsCollector
	Recorder     *service.ClickRecorder
	Geo          *service.GeoResolver
	Pipeline     *RedirectPipeline
	AuditDao     *dao.AuditDao

	redirect  config.RedirectConfig
	retention config.RetentionConfig
	closers   []io.Closer
	log       *logger.Log
	err       *errorc.ErrorBuilder
}

// NewApp 使用全局基础设施创建
func NewApp() *App {
	cfg := base.Configures.Config
	a, err := NewAppWithDeps(Deps{
		DB:        base.DB,
		RDB:       base.RDB,
		Cache:     base.Cache,
		Scheduler: base.Scheduler,
		Env:       base.ENV,
		Geo:       cfg.Geo,
		Redirect:  cfg.Redirect,
		Retention: cfg.Retention,
		Log:       base.Logger,
	})
	if err != nil {
		base.Logger.WithErr(err).Panic("短网址组件初始化失败")
	}
	return a
}

func NewAppWithDeps(d Deps) (*App, error) {
	if d.Log == nil {
		d.Log = logger.GetLogger()
	}
	log := d.Log.WithEntryName("ShortURLApp")

	linkDao := dao.NewLinkDao(d.DB, log)
	clickDao := dao.NewClickDao(d.DB, log)
	auditDao := dao.NewAuditDao(d.DB, log)

	a := &App{
		AuditDao:  auditDao,
		redirect:  d.Redirect,
		retention: d.Retention,
		log:       log,
		err:       errorc.NewErrorBuilder("ShortURLApp"),
	}

	provider := d.GeoProvider
	if provider == nil {
		provider = a.newGeoProvider(d.Geo)
	}

	a.Resolver = service.NewLinkResolver(linkDao, d.Cache, log)
	a.LinkService = service.NewLinkService(linkDao, auditDao, a.Resolver, log)
	a.StatsService = service.NewStatsService(clickDao, log)
	a.Geo = service.NewGeoResolver(provider, d.Cache, d.Env, log)
	if d.RDB != nil {
		a.Metrics = service.NewMetricsCollector(d.RDB, log)
	}
	device := service.NewDeviceParser(log)
	a.Recorder = service.NewClickRecorder(
		a.Geo,
		device,
		service.NewTemporalEnricher(),
		service.NewBehaviorAnalyzer(clickDao, log),
		service.NewUtmExtractor(),
		clickDao,
		log,
	)

	og, err := NewOGRenderer(d.Redirect.PublicBaseURL)
	if err != nil {
		return nil, a.err.New("加载预览页模板失败", err)
	}
	a.Pipeline = NewRedirectPipeline(PipelineConfig{
		Workers:    d.Redirect.Workers,
		QueueSize:  d.Redirect.QueueSize,
		BotPreview: d.Redirect.BotPreview,
	}, a.Resolver, device, a.Recorder, a.Metrics, og, log)

	if d.Scheduler != nil {
		if err := a.RegisterRetention(d.Scheduler); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) newGeoProvider(cfg config.GeoConfig) service.GeoProvider {
	switch cfg.Provider {
	case "maxmind":
		p, err := service.NewMaxMindProvider(cfg.CityDB, cfg.AsnDB)
		if err != nil {
			a.log.WithErr(err).WithField("city_db", cfg.CityDB).Warn("加载 MaxMind 库失败，地理位置解析已禁用")
			return nil
		}
		a.closers = append(a.closers, p)
		return p
	case "ipapi":
		return service.NewIpapiProvider(cfg.IpapiURL, cfg.Timeout())
	}
	return nil
}

// PublicBaseURL 短链对外地址前缀
func (a *App) PublicBaseURL() string {
	return a.redirect.PublicBaseURL
}
