package model

import (
	"net/url"
	"time"
)

// GeoData IP 解析出的地理信息
type GeoData struct {
	Country    string   `json:"country"`
	IsoCode    string   `json:"isoCode"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	StateName  string   `json:"stateName"`
	PostalCode string   `json:"postalCode"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Timezone   string   `json:"timezone"`
	Continent  string   `json:"continent"`
	Currency   string   `json:"currency"`
	ASN        uint     `json:"asn,omitempty"`
	ASOrg      string   `json:"asOrg,omitempty"`
	// IsLocal 本地/内网地址的占位结果
	IsLocal bool `json:"isLocal"`
	// IsDefault 解析失败或位置未知
	IsDefault bool `json:"isDefault"`
}

// LocalhostGeo 非生产环境下回环与内网地址的固定结果
func LocalhostGeo() GeoData {
	return GeoData{
		Country:  "Localhost",
		IsoCode:  "LO",
		City:     "Localhost",
		Timezone: "UTC",
		IsLocal:  true,
	}
}

// DefaultGeo 解析失败时的默认值
func DefaultGeo() GeoData {
	return GeoData{IsDefault: true}
}

const (
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
	DeviceBot     = "bot"
	DeviceDesktop = "desktop"
)

// DeviceInfo User-Agent 解析结果
type DeviceInfo struct {
	DeviceType     string `json:"deviceType"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	IsMobile       bool   `json:"isMobile"`
	IsTablet       bool   `json:"isTablet"`
	IsDesktop      bool   `json:"isDesktop"`
	IsBot          bool   `json:"isBot"`
}

// DefaultDevice 解析失败时按桌面端处理
func DefaultDevice() DeviceInfo {
	return DeviceInfo{
		DeviceType: DeviceDesktop,
		Browser:    "unknown",
		OS:         "unknown",
		IsDesktop:  true,
	}
}

// TemporalInfo 访问者本地时间信息
type TemporalInfo struct {
	HourOfDay       int
	DayOfWeek       int // ISO，1=周一 ... 7=周日
	DayOfMonth      int
	Month           int
	Year            int
	LocalTime       time.Time
	IsWeekend       bool
	IsBusinessHours bool
}

const (
	SourceDirect   = "direct"
	SourceSocial   = "social"
	SourceSearch   = "search"
	SourceEmail    = "email"
	SourceReferral = "referral"
	SourceUnknown  = "unknown"
)

// BehaviorInfo 访问行为
type BehaviorInfo struct {
	IsReturnVisitor bool
	SessionClicks   int
	ClickSource     string
}

func DefaultBehavior() BehaviorInfo {
	return BehaviorInfo{SessionClicks: 1, ClickSource: SourceUnknown}
}

// UtmFields 五个 UTM 参数
type UtmFields struct {
	Source   string `json:"utmSource,omitempty"`
	Medium   string `json:"utmMedium,omitempty"`
	Campaign string `json:"utmCampaign,omitempty"`
	Term     string `json:"utmTerm,omitempty"`
	Content  string `json:"utmContent,omitempty"`
}

func (u UtmFields) IsEmpty() bool {
	return u.Source == "" && u.Medium == "" && u.Campaign == "" && u.Term == "" && u.Content == ""
}

// ApplyTo 写入查询参数，已存在的参数保持不变
func (u UtmFields) ApplyTo(q url.Values) {
	for key, value := range u.pairs() {
		if value != "" && q.Get(key) == "" {
			q.Set(key, value)
		}
	}
}

func (u UtmFields) pairs() map[string]string {
	return map[string]string{
		"utm_source":   u.Source,
		"utm_medium":   u.Medium,
		"utm_campaign": u.Campaign,
		"utm_term":     u.Term,
		"utm_content":  u.Content,
	}
}

// ClickContext 一次跳转请求中用于生成点击记录的数据，从 fiber ctx 复制而来
type ClickContext struct {
	IP             string
	UserAgent      string
	Referer        string
	AcceptLanguage string
	Query          url.Values
	ReceivedAt     time.Time
	// ResponseTime 从收到请求到完成解析的耗时
	ResponseTime time.Duration
	// Device 跳转时已解析的设备信息，为空时由记录器解析
	Device *DeviceInfo
}
