package base

import (
	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/security"
	"linktrack/pkg/core/start"
	"linktrack/pkg/scheduler"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	Configures *start.Configures
	Logger     *logger.Log
	ENV        string
	AdminAuth  *security.AdminAuth
	DB         *gorm.DB
	RDB        *redis.Client
	Cache      *cache.Cache
	Scheduler  *scheduler.Scheduler
)
