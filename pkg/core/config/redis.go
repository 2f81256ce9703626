package config

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Mode       string `yaml:"mode"` // single | sentinel
	Host       string `yaml:"host"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	MasterName string `yaml:"master-name"`
}

// InitRDB 创建 redis 客户端，sentinel 模式下 Host 为逗号分隔的哨兵地址
func InitRDB(redisConfig RedisConfig, proxyConfig ProxyConfig) *redis.Client {
	if redisConfig.Mode != "sentinel" {
		opts := &redis.Options{
			Addr:     redisConfig.Host,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		}
		if proxyConfig.Enabled {
			opts.Dialer = proxyConfig.GetContextDialer()
		}
		return redis.NewClient(opts)
	}

	masterName := redisConfig.MasterName
	if masterName == "" {
		masterName = "mymaster"
	}
	failoverOpts := &redis.FailoverOptions{
		MasterName:       masterName,
		SentinelAddrs:    strings.Split(redisConfig.Host, ","),
		Password:         redisConfig.Password,
		SentinelPassword: redisConfig.Password,
		DB:               redisConfig.DB,
	}
	if proxyConfig.Enabled {
		failoverOpts.Dialer = proxyConfig.GetContextDialer()
	}
	return redis.NewFailoverClient(failoverOpts)
}
