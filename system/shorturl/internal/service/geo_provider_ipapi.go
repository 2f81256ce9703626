package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"linktrack/pkg/core/util"
	"linktrack/system/shorturl/internal/model"
)

const defaultIpapiURL = "http://ip-api.com/json/"

const ipapiFields = "status,message,country,countryCode,region,regionName,city,zip,lat,lon,timezone,continentCode,currency,as"

// IpapiProvider 调用 ip-api.com 兼容的 JSON 接口
type IpapiProvider struct {
	baseURL string
	timeout time.Duration
}

func NewIpapiProvider(baseURL string, timeout time.Duration) *IpapiProvider {
	if baseURL == "" {
		baseURL = defaultIpapiURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &IpapiProvider{baseURL: baseURL, timeout: timeout}
}

func (p *IpapiProvider) Name() string {
	return "ipapi"
}

func (p *IpapiProvider) Lookup(ctx context.Context, ip net.IP) (*model.GeoData, error) {
	result, err := util.HttpGet(ctx, p.baseURL+ip.String(), map[string]string{"fields": ipapiFields}, p.timeout)
	if err != nil {
		return nil, err
	}
	if status := result.Get("status").String(); status != "success" {
		msg := result.Get("message").String()
		// reserved range / private range 等视为位置未知
		if strings.Contains(msg, "range") || msg == "invalid query" {
			return nil, nil
		}
		return nil, errors.New("ip-api 查询失败: " + msg)
	}

	geo := &model.GeoData{
		Country:    result.Get("country").String(),
		IsoCode:    result.Get("countryCode").String(),
		City:       result.Get("city").String(),
		State:      result.Get("region").String(),
		StateName:  result.Get("regionName").String(),
		PostalCode: result.Get("zip").String(),
		Timezone:   result.Get("timezone").String(),
		Continent:  result.Get("continentCode").String(),
		Currency:   result.Get("currency").String(),
		ASOrg:      result.Get("as").String(),
	}
	if lat, lon := result.Get("lat"), result.Get("lon"); lat.Exists() && lon.Exists() {
		latV, lonV := lat.Float(), lon.Float()
		geo.Latitude, geo.Longitude = &latV, &lonV
	}
	return geo, nil
}
