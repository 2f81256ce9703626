package start

import (
	"fmt"
	"net"
	"time"

	"linktrack/pkg/core/config"
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/plugin"
	"linktrack/pkg/core/security"
	"linktrack/pkg/core/tracer"
	"linktrack/pkg/core/util"

	"github.com/bsm/redislock"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Config struct {
	AppName   string                 `yaml:"app-name"`
	Env       string                 `yaml:"env"`
	Host      string                 `yaml:"host"`
	Port      int                    `yaml:"port"`
	Domain    string                 `yaml:"domain"`
	Jwt       config.JwtConfig       `yaml:"jwt"`
	Redis     config.RedisConfig     `yaml:"redis"`
	Database  config.Database        `yaml:"db"`
	Proxy     config.ProxyConfig     `yaml:"proxy"`
	Log       config.LogConfig       `yaml:"log"`
	Zipkin    config.ZipkinConfig    `yaml:"zipkin"`
	Geo       config.GeoConfig       `yaml:"geo"`
	Redirect  config.RedirectConfig  `yaml:"redirect"`
	RateLimit config.RateLimitConfig `yaml:"ratelimit"`
	Retention config.RetentionConfig `yaml:"retention"`
	// OpsWebhook 运维告警机器人地址，为空时不发送
	OpsWebhook string `yaml:"ops-webhook"`
}

type Configures struct {
	Config    Config
	Logger    *logger.Log
	AdminAuth *security.AdminAuth
	Alerter   *util.OpsAlerter
}

func NewConfigures(file []byte, env string) *Configures {
	var cfg Config
	err := yaml.Unmarshal(file, &cfg)
	if err != nil {
		panic(fmt.Sprintf("读取文件信息失败，因为%v", err))
	}

	cfg.Env = env
	cfg.Host, _ = getLocalIP()
	if cfg.Redirect.PublicBaseURL == "" && cfg.Domain != "" {
		cfg.Redirect.PublicBaseURL = "https://" + cfg.Domain
	}

	level := cfg.Log.Level
	if level == "" {
		level = "debug"
		if env == "prod" {
			level = "info"
		}
	}
	c := &Configures{
		Config:  cfg,
		Logger:  logger.InitLogger(level),
		Alerter: util.NewOpsAlerter(cfg.OpsWebhook, env),
	}
	if cfg.Log.Sls {
		c.Logger.Send2Cloud(cfg.AppName, cfg.Host, cfg.Log)
	}

	c.AdminAuth = c.EnableAdminAuth()

	return c
}

// getLocalIP 获取本机IP地址（优先获取内网IP）
func getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil && ipnet.IP.IsPrivate() {
				return ipnet.IP.String(), nil
			}
		}
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "127.0.0.1", nil
}

func (c *Configures) EnableAdminAuth() *security.AdminAuth {
	hours := c.Config.Jwt.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	return security.NewAdminAuth([]byte(c.Config.Jwt.AdminSecret), time.Duration(hours)*time.Hour)
}

func (c *Configures) EnableRedis() *redis.Client {
	return config.InitRDB(c.Config.Redis, c.Config.Proxy)
}

func (c *Configures) EnableCache(rdb *redis.Client) *cache.Cache {
	return cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(1000, time.Minute),
	})
}

func (c *Configures) EnableLocker(rdb *redis.Client) *redislock.Client {
	return redislock.New(rdb)
}

// EnableDB 按 db.driver 连接 mysql 或 postgres，并挂载慢查询插件
func (c *Configures) EnableDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)
	switch c.Config.Database.Driver {
	case "postgres":
		db, err = config.InitPg(c.Config.Database, c.Config.Proxy)
	default:
		db, err = config.InitMysql(c.Config.Database, c.Config.Proxy)
	}
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithErr(err).Panic("failed connect database")
	}

	if err := db.Use(plugin.NewGORMMonitorPlugin(plugin.GORMMonitorConfig{
		Logger:        c.zapLogger(),
		SlowThreshold: time.Duration(c.Config.Log.SlowQueryMs) * time.Millisecond,
		Debug:         c.Config.Env == "dev",
	})); err != nil {
		c.Logger.WithErr(err).Warn("注册 SQL 监控插件失败")
	}
	c.Logger.Info("connect database success")
	return db
}

// EnableTracer 配置了 zipkin 地址时上报链路，否则只生成 TraceID
func (c *Configures) EnableTracer() tracer.Tracer {
	if c.Config.Zipkin.Url == "" {
		return tracer.NewSimpleTracer()
	}
	zt, err := config.InitZipkin(c.Config.Zipkin, c.Config.AppName, fmt.Sprintf("%s:%d", c.Config.Host, c.Config.Port))
	if err != nil {
		c.Logger.WithErr(err).Warn("初始化 zipkin 失败，使用本地 TraceID")
		return tracer.NewSimpleTracer()
	}
	return tracer.NewZipkinTracer(zt, c.Config.AppName)
}

func (c *Configures) zapLogger() *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if c.Config.Env == "prod" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
