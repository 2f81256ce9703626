package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TaskStatus 任务状态
type TaskStatus int32

const (
	// TaskStatusWaiting 等待执行
	TaskStatusWaiting TaskStatus = iota
	// TaskStatusRunning 正在执行
	TaskStatusRunning
	// TaskStatusFailed 上次执行失败
	TaskStatusFailed
)

// TaskExecuteMode 任务执行模式
type TaskExecuteMode int

const (
	// TaskExecuteModeDistributed 分布式执行，多实例间只有拿到锁的一个执行
	TaskExecuteModeDistributed TaskExecuteMode = iota
	// TaskExecuteModeLocal 本地执行
	TaskExecuteModeLocal
)

// TaskFunc 任务执行函数
type TaskFunc func(ctx context.Context) error

// specParser 六段式表达式，首位为秒
var specParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CronTask 基于 Cron 表达式的任务
type CronTask struct {
	ID          string
	Name        string
	Spec        string
	ExecuteMode TaskExecuteMode
	Timeout     time.Duration
	Func        TaskFunc

	schedule cron.Schedule
	status   atomic.Int32
}

// NewCronTask 创建 Cron 任务，表达式非法时返回错误
func NewCronTask(name, spec string, executeMode TaskExecuteMode, timeout time.Duration, fn TaskFunc) (*CronTask, error) {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return nil, err
	}
	return &CronTask{
		ID:          uuid.New().String(),
		Name:        name,
		Spec:        spec,
		ExecuteMode: executeMode,
		Timeout:     timeout,
		Func:        fn,
		schedule:    schedule,
	}, nil
}

// GetTimeout 默认 30 秒
func (t *CronTask) GetTimeout() time.Duration {
	if t.Timeout <= 0 {
		return 30 * time.Second
	}
	return t.Timeout
}

// Next 下次触发时间
func (t *CronTask) Next(from time.Time) time.Time {
	return t.schedule.Next(from)
}

func (t *CronTask) GetStatus() TaskStatus {
	return TaskStatus(t.status.Load())
}

func (t *CronTask) setStatus(status TaskStatus) {
	t.status.Store(int32(status))
}
