package config

// JwtConfig 管理端令牌校验配置，令牌由外部认证服务签发
type JwtConfig struct {
	AdminSecret string `yaml:"admin-secret" json:"admin-secret,omitempty"`
	ExpireHours int    `yaml:"expire-hours" json:"expire-hours,omitempty"`
}
