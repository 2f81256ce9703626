package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"linktrack/pkg/core/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) *redislock.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redislock.New(rdb)
}

func TestNewCronTask_InvalidSpec(t *testing.T) {
	_, err := NewCronTask("bad", "not a spec", TaskExecuteModeLocal, time.Second, func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestCronTask_Next(t *testing.T) {
	task, err := NewCronTask("daily", "0 30 3 * * *", TaskExecuteModeLocal, 0, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	from := time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 2, 3, 30, 0, 0, time.UTC), task.Next(from))
	assert.Equal(t, 30*time.Second, task.GetTimeout())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(newLocker(t), logger.GetLogger())
	calls := 0
	task, err := NewCronTask("count", "@every 1h", TaskExecuteModeDistributed, time.Second, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.AddTask(task))
	assert.Error(t, s.AddTask(task))

	require.NoError(t, s.RunNow(context.Background(), "count"))
	require.NoError(t, s.RunNow(context.Background(), "count"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, TaskStatusWaiting, task.GetStatus())

	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestScheduler_DistributedLockHeld(t *testing.T) {
	locker := newLocker(t)
	s := NewScheduler(locker, logger.GetLogger())
	called := false
	task, err := NewCronTask("purge", "@every 1h", TaskExecuteModeDistributed, time.Minute, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.AddTask(task))

	// 模拟另一实例持有锁
	held, err := locker.Obtain(context.Background(), "scheduler:lock:purge", time.Minute, nil)
	require.NoError(t, err)
	defer held.Release(context.Background())

	err = s.RunNow(context.Background(), "purge")
	assert.True(t, errors.Is(err, ErrLockNotObtained))
	assert.False(t, called)
}

func TestScheduler_TaskFailureAndPanic(t *testing.T) {
	s := NewScheduler(nil, logger.GetLogger())
	failing, err := NewCronTask("fail", "@every 1h", TaskExecuteModeLocal, time.Second, func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, err)
	panicking, err := NewCronTask("panic", "@every 1h", TaskExecuteModeLocal, time.Second, func(ctx context.Context) error {
		panic("boom")
	})
	require.NoError(t, err)
	require.NoError(t, s.AddTask(failing))
	require.NoError(t, s.AddTask(panicking))

	assert.Error(t, s.RunNow(context.Background(), "fail"))
	assert.Equal(t, TaskStatusFailed, failing.GetStatus())
	assert.Error(t, s.RunNow(context.Background(), "panic"))
	assert.Equal(t, TaskStatusFailed, panicking.GetStatus())

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
}
