package system

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"linktrack/pkg/core/logger"
)

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

var (
	closes []closer
	mu     sync.Mutex
)

// RegisterClose 退出时按注册的逆序执行
func RegisterClose(name string, f func(ctx context.Context) error) {
	mu.Lock()
	defer mu.Unlock()

	closes = append(closes, closer{name: name, fn: f})
}

// WaitSignal 阻塞直到收到退出信号
func WaitSignal() os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(ch)
	return <-ch
}

// Shutdown 单个关闭函数失败不影响后续执行
func Shutdown(ctx context.Context, log *logger.Log) {
	mu.Lock()
	list := closes
	closes = nil
	mu.Unlock()

	for i := len(list) - 1; i >= 0; i-- {
		c := list[i]
		if err := c.fn(ctx); err != nil {
			log.WithErr(err).WithField("component", c.name).Error("关闭失败")
			continue
		}
		log.WithField("component", c.name).Info("已关闭")
	}
}
