package service

import (
	"regexp"
	"strings"

	"linktrack/pkg/core/logger"
	"linktrack/system/shorturl/internal/model"

	"github.com/mssola/useragent"
)

var (
	tabletPattern  = regexp.MustCompile(`(?i)ipad|tablet|kindle|silk|playbook|nexus (7|9|10)|sm-t\d*`)
	androidPattern = regexp.MustCompile(`(?i)android`)
	mobilePattern  = regexp.MustCompile(`(?i)mobile|iphone|ipod|blackberry|opera mini|iemobile|windows phone|webos`)
	botPattern     = regexp.MustCompile(`(?i)facebookexternalhit|twitterbot|slackbot|linkedinbot|whatsapp|telegrambot|discordbot|bot\b|bot/|crawl|spider|slurp|headless`)
)

// DeviceParser 根据 User-Agent 识别设备类型、浏览器与操作系统
type DeviceParser struct {
	log *logger.Log
}

func NewDeviceParser(log *logger.Log) *DeviceParser {
	return &DeviceParser{log: log.WithEntryName("DeviceParser")}
}

// Parse 判定顺序为 平板 > 手机 > 爬虫 > 桌面，IsBot 单独判定
func (p *DeviceParser) Parse(ua string) (info model.DeviceInfo) {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return model.DefaultDevice()
	}
	defer func() {
		if rec := recover(); rec != nil {
			p.log.WithField("ua", ua).WithField("panic", rec).Warn("User-Agent 解析异常")
			info = model.DefaultDevice()
		}
	}()

	parsed := useragent.New(ua)
	info.Browser, info.BrowserVersion = parsed.Browser()
	os := parsed.OSInfo()
	info.OS, info.OSVersion = os.Name, os.Version
	if info.Browser == "" {
		info.Browser = "unknown"
	}
	if info.OS == "" {
		info.OS = "unknown"
	}

	info.IsBot = parsed.Bot() || botPattern.MatchString(ua)
	switch {
	case isTablet(ua):
		info.DeviceType = model.DeviceTablet
		info.IsTablet = true
	case parsed.Mobile() || mobilePattern.MatchString(ua):
		info.DeviceType = model.DeviceMobile
		info.IsMobile = true
	case info.IsBot:
		info.DeviceType = model.DeviceBot
	default:
		info.DeviceType = model.DeviceDesktop
		info.IsDesktop = true
	}
	return info
}

// 不含 mobile 的 Android 视为平板
func isTablet(ua string) bool {
	if tabletPattern.MatchString(ua) {
		return true
	}
	return androidPattern.MatchString(ua) && !strings.Contains(strings.ToLower(ua), "mobile")
}
