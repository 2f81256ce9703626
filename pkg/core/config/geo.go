package config

import "time"

// GeoConfig IP 地理位置解析配置
type GeoConfig struct {
	// Provider maxmind | ipapi | none
	Provider string `yaml:"provider"`
	// CityDB MaxMind GeoLite2/GeoIP2 City 库路径
	CityDB string `yaml:"city-db"`
	// AsnDB 可选的 ASN 库路径
	AsnDB    string `yaml:"asn-db"`
	IpapiURL string `yaml:"ipapi-url"`
	// TimeoutMs 单次外部查询超时
	TimeoutMs int `yaml:"timeout-ms"`
}

func (g GeoConfig) Timeout() time.Duration {
	if g.TimeoutMs <= 0 {
		return 800 * time.Millisecond
	}
	return time.Duration(g.TimeoutMs) * time.Millisecond
}
