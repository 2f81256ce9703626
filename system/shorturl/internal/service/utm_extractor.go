package service

import (
	"net/url"

	"linktrack/system/shorturl/internal/model"
)

// UtmExtractor 请求参数中有任一 utm_* 时只取请求参数，否则从 Referer 中提取
type UtmExtractor struct{}

func NewUtmExtractor() *UtmExtractor {
	return &UtmExtractor{}
}

func (e *UtmExtractor) Extract(query url.Values, referer string) model.UtmFields {
	if utm := utmFromValues(query); !utm.IsEmpty() {
		return utm
	}
	if referer == "" {
		return model.UtmFields{}
	}
	u, err := url.Parse(referer)
	if err != nil {
		return model.UtmFields{}
	}
	return utmFromValues(u.Query())
}

func utmFromValues(q url.Values) model.UtmFields {
	if q == nil {
		return model.UtmFields{}
	}
	return model.UtmFields{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Term:     q.Get("utm_term"),
		Content:  q.Get("utm_content"),
	}
}
