package model

import (
	"time"

	"linktrack/pkg/core/model/common"
)

// Link 短链接
type Link struct {
	common.Model
	Slug        string     `gorm:"type:varchar(64);not null;uniqueIndex;comment:短码" json:"slug" comment:"短码"`
	OriginalURL string     `gorm:"type:varchar(2048);not null;comment:目标地址" json:"originalUrl" comment:"目标地址"`
	Title       string     `gorm:"type:varchar(255);comment:标题" json:"title" comment:"标题"`
	Description string     `gorm:"type:varchar(1000);comment:描述" json:"description" comment:"描述"`
	OwnerID     *int64     `gorm:"index;comment:所有者ID（匿名创建为空）" json:"ownerId" comment:"所有者ID"`
	IsActive    bool       `gorm:"not null;default:true;comment:是否启用" json:"isActive" comment:"是否启用"`
	ExpiresAt   *time.Time `gorm:"comment:过期时间" json:"expiresAt" comment:"过期时间"`
	StartsIn    *time.Time `gorm:"comment:生效时间" json:"startsIn" comment:"生效时间"`
	ClickLimit  *int64     `gorm:"comment:点击上限（NULL表示无限制）" json:"clickLimit" comment:"点击上限"`
	Clicks      int64      `gorm:"type:bigint;not null;default:0;comment:点击次数" json:"clicks" comment:"点击次数"`

	UtmSource   string `gorm:"type:varchar(255)" json:"utmSource"`
	UtmMedium   string `gorm:"type:varchar(255)" json:"utmMedium"`
	UtmCampaign string `gorm:"type:varchar(255)" json:"utmCampaign"`
	UtmTerm     string `gorm:"type:varchar(255)" json:"utmTerm"`
	UtmContent  string `gorm:"type:varchar(255)" json:"utmContent"`
}

func (Link) TableName() string {
	return "shorturl_links"
}

// IsExpired now 不早于过期时间即视为过期
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

func (l *Link) IsNotStarted(now time.Time) bool {
	return l.StartsIn != nil && now.Before(*l.StartsIn)
}

func (l *Link) IsLimitReached() bool {
	return l.ClickLimit != nil && l.Clicks >= *l.ClickLimit
}

// IsUsable 启用、在有效期内且未达到点击上限
func (l *Link) IsUsable(now time.Time) bool {
	return l.IsActive && !l.IsExpired(now) && !l.IsNotStarted(now) && !l.IsLimitReached()
}

// DefaultUtm 链接上配置的默认 UTM 参数
func (l *Link) DefaultUtm() UtmFields {
	return UtmFields{
		Source:   l.UtmSource,
		Medium:   l.UtmMedium,
		Campaign: l.UtmCampaign,
		Term:     l.UtmTerm,
		Content:  l.UtmContent,
	}
}
