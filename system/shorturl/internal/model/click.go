package model

import (
	"time"

	"gorm.io/gorm"
)

// Click 一次成功解析对应的点击记录，写入后不再修改
type Click struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	LinkID  int64  `gorm:"not null;index;comment:短链接ID" json:"linkId"`
	Link    *Link  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EventID string `gorm:"type:varchar(36);not null;uniqueIndex;comment:事件ID" json:"eventId"`

	IP        string `gorm:"type:varchar(64);index:idx_click_ip_time,priority:1;comment:访问者IP" json:"ip"`
	UserAgent string `gorm:"type:varchar(1024)" json:"userAgent"`
	Referer   string `gorm:"type:varchar(2048)" json:"referer"`

	// 地理信息
	Country    string   `gorm:"type:varchar(100)" json:"country"`
	IsoCode    string   `gorm:"type:varchar(8)" json:"isoCode"`
	City       string   `gorm:"type:varchar(100)" json:"city"`
	State      string   `gorm:"type:varchar(32)" json:"state"`
	StateName  string   `gorm:"type:varchar(100)" json:"stateName"`
	PostalCode string   `gorm:"type:varchar(32)" json:"postalCode"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Timezone   string   `gorm:"type:varchar(64)" json:"timezone"`
	Continent  string   `gorm:"type:varchar(32)" json:"continent"`
	Currency   string   `gorm:"type:varchar(8)" json:"currency"`

	// 设备信息
	DeviceType     string `gorm:"type:varchar(16)" json:"deviceType"`
	Browser        string `gorm:"type:varchar(64)" json:"browser"`
	BrowserVersion string `gorm:"type:varchar(64)" json:"browserVersion"`
	OS             string `gorm:"type:varchar(64)" json:"os"`
	OSVersion      string `gorm:"type:varchar(64)" json:"osVersion"`
	IsMobile       bool   `json:"isMobile"`
	IsTablet       bool   `json:"isTablet"`
	IsDesktop      bool   `json:"isDesktop"`
	IsBot          bool   `json:"isBot"`

	// 访问者本地时间
	HourOfDay       int       `json:"hourOfDay"`
	DayOfWeek       int       `json:"dayOfWeek"`
	DayOfMonth      int       `json:"dayOfMonth"`
	Month           int       `json:"month"`
	Year            int       `json:"year"`
	LocalTime       WallClock `gorm:"type:varchar(19);comment:访问者本地时间" json:"localTime"`
	IsWeekend       bool      `json:"isWeekend"`
	IsBusinessHours bool      `json:"isBusinessHours"`

	// 行为
	IsReturnVisitor bool   `json:"isReturnVisitor"`
	SessionClicks   int    `json:"sessionClicks"`
	ClickSource     string `gorm:"type:varchar(16)" json:"clickSource"`

	ResponseTimeMs int64  `json:"responseTimeMs"`
	AcceptLanguage string `gorm:"type:varchar(255)" json:"acceptLanguage"`

	ClickedAt time.Time `gorm:"not null;index;index:idx_click_ip_time,priority:2" json:"clickedAt"`

	Utm *ClickUtm `gorm:"constraint:OnDelete:CASCADE" json:"utm,omitempty"`
}

func (Click) TableName() string {
	return "shorturl_clicks"
}

// AfterFind 按记录的时区还原本地时间
func (c *Click) AfterFind(tx *gorm.DB) error {
	loc := time.UTC
	if c.Timezone != "" {
		if l, err := time.LoadLocation(c.Timezone); err == nil {
			loc = l
		}
	}
	c.LocalTime = c.LocalTime.Anchor(loc)
	return nil
}

// ClickUtm 点击时携带的 UTM 参数，至少一个字段非空时才写入
type ClickUtm struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	ClickID     int64  `gorm:"not null;uniqueIndex" json:"clickId"`
	UtmSource   string `gorm:"type:varchar(255)" json:"utmSource"`
	UtmMedium   string `gorm:"type:varchar(255)" json:"utmMedium"`
	UtmCampaign string `gorm:"type:varchar(255)" json:"utmCampaign"`
	UtmTerm     string `gorm:"type:varchar(255)" json:"utmTerm"`
	UtmContent  string `gorm:"type:varchar(255)" json:"utmContent"`
}

func (ClickUtm) TableName() string {
	return "shorturl_click_utms"
}

func NewClickUtm(u UtmFields) *ClickUtm {
	return &ClickUtm{
		UtmSource:   u.Source,
		UtmMedium:   u.Medium,
		UtmCampaign: u.Campaign,
		UtmTerm:     u.Term,
		UtmContent:  u.Content,
	}
}
