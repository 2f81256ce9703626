package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"linktrack/app"
	"linktrack/base"
	"linktrack/pkg/core/start"
	"linktrack/pkg/core/system"
	"linktrack/pkg/db"
	"linktrack/pkg/scheduler"
	"linktrack/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	env, filename := getBaseInfo()

	file, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("读取配置文件失败,因为：%v", err))
	}

	configures := start.NewConfigures(file, env)
	base.Configures = configures
	base.Logger = configures.Logger
	base.ENV = env
	base.AdminAuth = configures.AdminAuth

	base.DB = configures.EnableDB()
	system.RegisterClose("db", func(ctx context.Context) error {
		sqlDB, err := base.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	// 执行数据库迁移
	if err := db.AutoMigrate(base.DB); err != nil {
		configures.Logger.Panic(fmt.Sprintf("数据库迁移失败: %v", err))
	}

	base.RDB = configures.EnableRedis()
	system.RegisterClose("redis", func(ctx context.Context) error {
		return base.RDB.Close()
	})
	base.Cache = configures.EnableCache(base.RDB)

	base.Scheduler = scheduler.NewScheduler(configures.EnableLocker(base.RDB), base.Logger)
	system.RegisterClose("scheduler", base.Scheduler.Stop)

	// 创建应用组合根，定时任务在此注册
	appRoot := app.NewApp()
	system.RegisterClose("app", appRoot.Close)
	base.Scheduler.Start()

	fiberApp := app.GetApp()
	router.Register(appRoot, fiberApp, configures.EnableTracer(), base.Logger)
	system.RegisterClose("http", func(ctx context.Context) error {
		return fiberApp.ShutdownWithContext(ctx)
	})

	go func() {
		if err := fiberApp.Listen(fmt.Sprintf(":%d", base.Configures.Config.Port)); err != nil {
			base.Logger.WithErr(err).Error("HTTP 服务异常退出")
		}
	}()

	sig := system.WaitSignal()
	base.Logger.WithField("signal", sig.String()).Info("开始优雅退出")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	system.Shutdown(ctx, base.Logger)
}

func getBaseInfo() (string, string) {
	// 定义命令行参数
	env := flag.String("env", "dev", "环境配置 (dev, prod, test等)")
	configFile := flag.String("config", "", "配置文件路径，默认为 ./resources/{env}.yaml")

	flag.Parse()

	// 如果没有指定配置文件路径，则使用默认路径
	var filename string
	if *configFile == "" {
		getwd, err := os.Getwd()
		if err != nil {
			panic(fmt.Sprintf("获取当前文件位置失败,因为：%v", err))
		}
		filename = getwd + "/resources/" + *env + ".yaml"
	} else {
		filename = *configFile
	}
	return *env, filename
}
