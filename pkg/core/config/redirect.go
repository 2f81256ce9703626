package config

// RedirectConfig 跳转与点击记录配置
type RedirectConfig struct {
	Workers    int  `yaml:"workers"`
	QueueSize  int  `yaml:"queue-size"`
	BotPreview bool `yaml:"bot-preview"`
	// PublicBaseURL 用于拼装 OG 页面中的短链地址，如 https://s.example.com
	PublicBaseURL string `yaml:"public-base-url"`
}

// RateLimitConfig 固定窗口限流
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	RedirectLimit int  `yaml:"redirect-limit"`
	CreateLimit   int  `yaml:"create-limit"`
	WindowSeconds int  `yaml:"window-seconds"`
}

// RetentionConfig 审计日志保留策略
type RetentionConfig struct {
	AuditDays int    `yaml:"audit-days"`
	Cron      string `yaml:"cron"`
}
