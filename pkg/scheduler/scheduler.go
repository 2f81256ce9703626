package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"linktrack/pkg/core/logger"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
)

// ErrLockNotObtained 分布式任务未抢到锁，本次跳过
var ErrLockNotObtained = errors.New("scheduler: lock not obtained")

// Scheduler 基于 robfig/cron 的任务调度器，分布式任务通过 redislock 互斥
type Scheduler struct {
	cron   *cron.Cron
	locker *redislock.Client
	log    *logger.Log

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	tasks map[string]*CronTask
}

// NewScheduler locker 为空时分布式任务退化为本地执行
func NewScheduler(locker *redislock.Client, log *logger.Log) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(specParser), cron.WithLocation(time.UTC)),
		locker: locker,
		log:    log.WithEntryName("Scheduler"),
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*CronTask),
	}
}

func (s *Scheduler) AddTask(task *CronTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.Name]; ok {
		return fmt.Errorf("任务已存在: %s", task.Name)
	}
	s.cron.Schedule(task.schedule, cron.FuncJob(func() {
		if err := s.RunNow(s.ctx, task.Name); err != nil && !errors.Is(err, ErrLockNotObtained) {
			s.log.WithErr(err).WithField("task", task.Name).Error("任务执行失败")
		}
	}))
	s.tasks[task.Name] = task
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("tasks", len(s.tasks)).Info("调度器已启动")
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow 立即执行一次指定任务
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("任务不存在: %s", name)
	}
	return s.run(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, task *CronTask) (err error) {
	ctx, cancel := context.WithTimeout(ctx, task.GetTimeout())
	defer cancel()

	if task.ExecuteMode == TaskExecuteModeDistributed && s.locker != nil {
		lock, lockErr := s.locker.Obtain(ctx, "scheduler:lock:"+task.Name, task.GetTimeout(), nil)
		if errors.Is(lockErr, redislock.ErrNotObtained) {
			s.log.WithField("task", task.Name).Debug("其他实例正在执行，跳过")
			return ErrLockNotObtained
		}
		if lockErr != nil {
			return lockErr
		}
		defer func() {
			// 使用独立上下文释放，避免任务超时后锁无法释放
			_ = lock.Release(context.Background())
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("任务 panic: %v", r)
			task.setStatus(TaskStatusFailed)
		}
	}()

	start := time.Now()
	task.setStatus(TaskStatusRunning)
	err = task.Func(ctx)
	if err != nil {
		task.setStatus(TaskStatusFailed)
		return err
	}
	task.setStatus(TaskStatusWaiting)
	s.log.WithField("task", task.Name).WithField("cost", time.Since(start)).Info("任务执行成功")
	return nil
}
