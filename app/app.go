package app

import (
	"context"

	"linktrack/system/shorturl"
)

// App 应用组合根，持有各业务组件模块
type App struct {
	ShortURLModule *shorturl.Module
}

func NewApp() *App {
	return &App{
		ShortURLModule: shorturl.NewModule(),
	}
}

// Close 排空各模块的后台任务
func (a *App) Close(ctx context.Context) error {
	return a.ShortURLModule.Close(ctx)
}
