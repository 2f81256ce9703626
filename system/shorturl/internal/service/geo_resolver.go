package service

import (
	"context"
	"net"
	"time"

	"linktrack/pkg/core/consts"
	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"

	"github.com/go-redis/cache/v9"
)

const (
	geoCachePrefix = "shorturl:geo:"
	geoHitTTL      = 24 * time.Hour
	geoMissTTL     = time.Hour
)

// GeoProvider IP 地理位置数据源，位置未知时返回 nil, nil
type GeoProvider interface {
	Name() string
	Lookup(ctx context.Context, ip net.IP) (*model.GeoData, error)
}

// GeoResolver 解析访问者地理位置，任何失败都回落为默认值
type GeoResolver struct {
	provider GeoProvider
	cache    *cache.Cache
	env      string
	log      *logger.Log
}

// NewGeoResolver provider 与 cache 均可为空
func NewGeoResolver(provider GeoProvider, c *cache.Cache, env string, log *logger.Log) *GeoResolver {
	return &GeoResolver{
		provider: provider,
		cache:    c,
		env:      env,
		log:      log.WithEntryName("GeoResolver"),
	}
}

func (r *GeoResolver) Locate(ctx context.Context, rawIP string) model.GeoData {
	ip := net.ParseIP(rawIP)
	if ip == nil {
		return model.DefaultGeo()
	}
	if r.env != consts.EnvProd && isLocalIP(ip) {
		return model.LocalhostGeo()
	}
	if r.provider == nil {
		return model.DefaultGeo()
	}

	key := geoCachePrefix + ip.String()
	if r.cache != nil {
		var cached model.GeoData
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			return cached
		}
	}

	geo := r.lookup(ctx, ip)
	if r.cache != nil {
		ttl := geoHitTTL
		if geo.IsDefault {
			ttl = geoMissTTL
		}
		if err := r.cache.Set(&cache.Item{Ctx: ctx, Key: key, Value: &geo, TTL: ttl}); err != nil {
			r.log.WithErr(err).Debug("写入地理位置缓存失败")
		}
	}
	return geo
}

func (r *GeoResolver) lookup(ctx context.Context, ip net.IP) (geo model.GeoData) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("ip", ip.String()).WithField("panic", rec).Warn("地理位置解析异常")
			geo = model.DefaultGeo()
		}
	}()

	data, err := r.provider.Lookup(ctx, ip)
	if err != nil {
		r.log.WithErr(err).WithField("provider", r.provider.Name()).WithField("ip", ip.String()).Warn("地理位置查询失败")
		return model.DefaultGeo()
	}
	if data == nil || (data.IsoCode == "" && data.Country == "") {
		return model.DefaultGeo()
	}
	if data.Currency == "" {
		data.Currency = CurrencyForCountry(data.IsoCode)
	}
	return *data
}

func isLocalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}
