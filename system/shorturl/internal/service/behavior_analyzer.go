package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"
)

const (
	returnVisitorWindow = 24 * time.Hour
	sessionWindow       = time.Hour
)

var (
	socialHosts = []string{
		"facebook.", "fb.com", "fb.me", "t.co", "twitter.", "x.com", "instagram.", "linkedin.", "lnkd.in",
		"pinterest.", "reddit.", "tiktok.", "youtube.", "youtu.be", "weibo.", "weixin.", "wechat.",
		"douyin.", "zhihu.", "tumblr.", "snapchat.", "whatsapp.", "telegram.", "t.me", "discord.",
	}
	searchHosts = []string{
		"google.", "bing.", "baidu.", "yahoo.", "duckduckgo.", "yandex.", "sogou.", "so.com",
		"ecosia.", "ask.com", "naver.", "seznam.",
	}
	emailHosts = []string{
		"mail.", "outlook.", "gmail.", "yahoo.com/mail", "mail.qq.", "exmail.", "protonmail.", "proton.me",
	}
)

// ClickCounter 按 IP 统计时间窗口内的点击数
type ClickCounter interface {
	CountByIPSince(ctx context.Context, ip string, since, until time.Time) (int64, error)
}

// BehaviorAnalyzer 判断回访、会话点击数与流量来源
type BehaviorAnalyzer struct {
	clicks ClickCounter
	log    *logger.Log
}

func NewBehaviorAnalyzer(clicks ClickCounter, log *logger.Log) *BehaviorAnalyzer {
	return &BehaviorAnalyzer{clicks: clicks, log: log.WithEntryName("BehaviorAnalyzer")}
}

// Analyze 当前点击尚未写入，窗口统计均不含本次
func (a *BehaviorAnalyzer) Analyze(ctx context.Context, ip string, linkID int64, referer string, at time.Time) model.BehaviorInfo {
	info := model.DefaultBehavior()
	info.ClickSource = ClassifySource(referer)
	if ip == "" {
		return info
	}

	day, err := a.clicks.CountByIPSince(ctx, ip, at.Add(-returnVisitorWindow), at)
	if err != nil {
		a.log.WithErr(err).WithField("ip", ip).WithField("linkId", linkID).Warn("统计回访失败")
		return model.DefaultBehavior()
	}
	session, err := a.clicks.CountByIPSince(ctx, ip, at.Add(-sessionWindow), at)
	if err != nil {
		a.log.WithErr(err).WithField("ip", ip).WithField("linkId", linkID).Warn("统计会话点击失败")
		return model.DefaultBehavior()
	}

	info.IsReturnVisitor = day >= 1
	info.SessionClicks = int(session) + 1
	return info
}

// ClassifySource 根据 Referer 判断流量来源
func ClassifySource(referer string) string {
	ref := strings.TrimSpace(referer)
	switch strings.ToLower(ref) {
	case "", "-", "null", "about:blank":
		return model.SourceDirect
	}
	if strings.HasPrefix(strings.ToLower(ref), "mailto:") {
		return model.SourceEmail
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return model.SourceUnknown
	}
	host := strings.ToLower(u.Hostname())
	target := host + strings.ToLower(u.Path)

	switch {
	case matchHost(host, target, socialHosts):
		return model.SourceSocial
	case matchHost(host, target, emailHosts):
		return model.SourceEmail
	case matchHost(host, target, searchHosts):
		return model.SourceSearch
	}
	return model.SourceReferral
}

func matchHost(host, target string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(p, "/") {
			if strings.Contains(target, p) {
				return true
			}
			continue
		}
		if strings.HasSuffix(p, ".") {
			if strings.HasPrefix(host, p) || strings.Contains(host, "."+p) {
				return true
			}
			continue
		}
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
