package config

import (
	"context"
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Database struct {
	Driver       string `yaml:"driver" json:"driver,omitempty"` // mysql | postgres
	Host         string `yaml:"host" json:"host,omitempty"`
	Port         int64  `yaml:"port" json:"port,omitempty"`
	User         string `yaml:"user" json:"user,omitempty"`
	Password     string `yaml:"password" json:"password,omitempty"`
	DbName       string `yaml:"db-name" json:"db-name,omitempty"`
	MaxIdleConns int    `yaml:"max-idle-conns" json:"max-idle-conns,omitempty"`
	MaxOpenConns int    `yaml:"max-open-conns" json:"max-open-conns,omitempty"`
	LogLevel     string `yaml:"log-level" json:"log-level,omitempty"`
}

func (d Database) gormConfig() *gorm.Config {
	level := gormlogger.Warn
	switch d.LogLevel {
	case "silent":
		level = gormlogger.Silent
	case "error":
		level = gormlogger.Error
	case "info":
		level = gormlogger.Info
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}

func (d Database) tunePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	idle, open := d.MaxIdleConns, d.MaxOpenConns
	if idle <= 0 {
		idle = 10
	}
	if open <= 0 {
		open = 100
	}
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

func InitPg(database Database, proxyConfig ProxyConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s TimeZone=UTC",
		database.Host, database.Port, database.User, database.DbName, database.Password)

	// pgx 驱动不支持注入自定义 dialer，代理需在网络层配置
	db, err := gorm.Open(postgres.Open(dsn), database.gormConfig())
	if err != nil {
		return nil, err
	}
	return db, database.tunePool(db)
}

// MysqlDSN 构造 MySQL DSN，启用代理时注册自定义 dialer
func MysqlDSN(database Database, proxyConfig ProxyConfig) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = database.User
	cfg.Passwd = database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", database.Host, database.Port)
	cfg.DBName = database.DbName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	if proxyConfig.Enabled {
		dialerName := fmt.Sprintf("proxy_%d", time.Now().UnixNano())
		dialer := proxyConfig.GetDialer()
		mysqldriver.RegisterDialContext(dialerName, func(ctx context.Context, addr string) (net.Conn, error) {
			return dialer.Dial("tcp", addr)
		})
		cfg.Net = dialerName
	}
	return cfg.FormatDSN()
}

func InitMysql(database Database, proxyConfig ProxyConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(MysqlDSN(database, proxyConfig)), database.gormConfig())
	if err != nil {
		return nil, err
	}
	return db, database.tunePool(db)
}
