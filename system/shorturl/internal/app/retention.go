package app

import (
	"context"
	"time"

	"linktrack/pkg/scheduler"
)

const (
	retentionTaskName    = "shorturl-audit-retention"
	defaultAuditDays     = 365
	defaultRetentionCron = "0 30 3 * * *"
	retentionBatchSize   = 1000
)

// RegisterRetention 注册审计日志清理任务，多实例部署时只有抢到锁的实例执行
func (a *App) RegisterRetention(s *scheduler.Scheduler) error {
	spec := a.retention.Cron
	if spec == "" {
		spec = defaultRetentionCron
	}
	task, err := scheduler.NewCronTask(retentionTaskName, spec, scheduler.TaskExecuteModeDistributed, 10*time.Minute, a.PurgeAudits)
	if err != nil {
		return a.err.New("创建审计清理任务失败", err)
	}
	return s.AddTask(task)
}

// PurgeAudits 删除超过保留天数的审计记录
func (a *App) PurgeAudits(ctx context.Context) error {
	days := a.retention.AuditDays
	if days <= 0 {
		days = defaultAuditDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deleted, err := a.AuditDao.DeleteBefore(ctx, cutoff, retentionBatchSize)
	if err != nil {
		return err
	}
	a.log.WithField("cutoff", cutoff.Format(time.RFC3339)).WithField("deleted", deleted).Info("审计日志清理完成")
	return nil
}

// Close 排空点击队列并释放地理位置库
func (a *App) Close(ctx context.Context) error {
	err := a.Pipeline.Shutdown(ctx)
	for _, c := range a.closers {
		if cerr := c.Close(); cerr != nil {
			a.log.WithErr(cerr).Warn("关闭资源失败")
		}
	}
	return err
}
