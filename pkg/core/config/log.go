package config

type LogConfig struct {
	Level        string `yaml:"level"`
	Sls          bool   `yaml:"sls"`
	Endpoint     string `yaml:"endpoint"`
	Project      string `yaml:"project"`
	Logstore     string `yaml:"logstore"`
	AccessKey    string `yaml:"access-key"`
	AccessSecret string `yaml:"access-secret"`
	// SlowQueryMs 超过该耗时的 SQL 记录为慢查询，0 表示使用默认 200ms
	SlowQueryMs int `yaml:"slow-query-ms"`
}
