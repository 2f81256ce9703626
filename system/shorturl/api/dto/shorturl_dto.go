package dto

import (
	"strings"
	"time"

	"linktrack/system/shorturl/internal/model"
)

// LinkDTO 后台返回的短链接
type LinkDTO struct {
	ID          int64      `json:"id" comment:"ID"`
	Slug        string     `json:"slug" comment:"短码"`
	ShortURL    string     `json:"shortUrl" comment:"完整短链接"`
	OriginalURL string     `json:"originalUrl" comment:"目标地址"`
	Title       string     `json:"title" comment:"标题"`
	Description string     `json:"description" comment:"描述"`
	OwnerID     *int64     `json:"ownerId" comment:"所有者ID"`
	IsActive    bool       `json:"isActive" comment:"是否启用"`
	ExpiresAt   *time.Time `json:"expiresAt" comment:"过期时间"`
	StartsIn    *time.Time `json:"startsIn" comment:"生效时间"`
	ClickLimit  *int64     `json:"clickLimit" comment:"点击上限"`
	Clicks      int64      `json:"clicks" comment:"点击次数"`
	UtmSource   string     `json:"utmSource,omitempty"`
	UtmMedium   string     `json:"utmMedium,omitempty"`
	UtmCampaign string     `json:"utmCampaign,omitempty"`
	UtmTerm     string     `json:"utmTerm,omitempty"`
	UtmContent  string     `json:"utmContent,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" comment:"创建时间"`
	UpdatedAt   time.Time  `json:"updatedAt" comment:"更新时间"`
}

// PublicLinkDTO 公开查询只暴露展示信息
type PublicLinkDTO struct {
	Slug        string `json:"slug"`
	ShortURL    string `json:"shortUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// ShortURL baseURL 为空时返回相对路径
func ShortURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/r/" + slug
}

func FromLink(link *model.Link, baseURL string) *LinkDTO {
	if link == nil {
		return nil
	}
	return &LinkDTO{
		ID:          link.ID,
		Slug:        link.Slug,
		ShortURL:    ShortURL(baseURL, link.Slug),
		OriginalURL: link.OriginalURL,
		Title:       link.Title,
		Description: link.Description,
		OwnerID:     link.OwnerID,
		IsActive:    link.IsActive,
		ExpiresAt:   link.ExpiresAt,
		StartsIn:    link.StartsIn,
		ClickLimit:  link.ClickLimit,
		Clicks:      link.Clicks,
		UtmSource:   link.UtmSource,
		UtmMedium:   link.UtmMedium,
		UtmCampaign: link.UtmCampaign,
		UtmTerm:     link.UtmTerm,
		UtmContent:  link.UtmContent,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

func FromLinks(links []*model.Link, baseURL string) []*LinkDTO {
	out := make([]*LinkDTO, 0, len(links))
	for _, link := range links {
		out = append(out, FromLink(link, baseURL))
	}
	return out
}

func PublicFromLink(link *model.Link, baseURL string) *PublicLinkDTO {
	return &PublicLinkDTO{
		Slug:        link.Slug,
		ShortURL:    ShortURL(baseURL, link.Slug),
		Title:       link.Title,
		Description: link.Description,
		IsActive:    link.IsActive,
	}
}

// ClickDTO 最近点击记录
type ClickDTO struct {
	ID          int64     `json:"id"`
	IsoCode     string    `json:"isoCode"`
	City        string    `json:"city"`
	DeviceType  string    `json:"deviceType"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	IsBot       bool      `json:"isBot"`
	ClickSource string    `json:"clickSource"`
	Referer     string    `json:"referer"`
	ClickedAt   time.Time `json:"clickedAt"`
}

func FromClicks(clicks []*model.Click) []*ClickDTO {
	out := make([]*ClickDTO, 0, len(clicks))
	for _, c := range clicks {
		out = append(out, &ClickDTO{
			ID:          c.ID,
			IsoCode:     c.IsoCode,
			City:        c.City,
			DeviceType:  c.DeviceType,
			Browser:     c.Browser,
			OS:          c.OS,
			IsBot:       c.IsBot,
			ClickSource: c.ClickSource,
			Referer:     c.Referer,
			ClickedAt:   c.ClickedAt,
		})
	}
	return out
}
