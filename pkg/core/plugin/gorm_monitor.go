package plugin

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"linktrack/pkg/core/consts"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	startTimeKey = "gorm:monitor_start_time"
	callerKey    = "gorm:monitor_caller"
)

// GORMMonitorPlugin 记录慢查询与执行失败的 SQL
type GORMMonitorPlugin struct {
	userPackage   string
	logger        *zap.Logger
	slowThreshold time.Duration
	debug         bool
}

type GORMMonitorConfig struct {
	// UserPackage 用于从堆栈中定位业务调用方
	UserPackage string
	Logger      *zap.Logger
	// SlowThreshold 默认 200ms
	SlowThreshold time.Duration
	Debug         bool
}

// CallerInfo 发起查询的业务代码位置
type CallerInfo struct {
	Function string
	File     string
	Line     int
}

func NewGORMMonitorPlugin(config GORMMonitorConfig) *GORMMonitorPlugin {
	p := &GORMMonitorPlugin{
		userPackage:   config.UserPackage,
		logger:        config.Logger,
		slowThreshold: config.SlowThreshold,
		debug:         config.Debug,
	}
	if p.slowThreshold <= 0 {
		p.slowThreshold = 200 * time.Millisecond
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.userPackage == "" {
		p.userPackage = "linktrack/"
	}
	return p
}

func (p *GORMMonitorPlugin) Name() string {
	return "gorm:monitor"
}

func (p *GORMMonitorPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, p.before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, p.after) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, p.before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, p.after) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, p.before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, p.after) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, p.before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, p.after) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, p.before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, p.after) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, p.before) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, p.after) }},
	}
	for _, r := range registrations {
		if err := r.before("gorm:monitor_" + r.name + "_before"); err != nil {
			return fmt.Errorf("注册 GORM 监控回调失败: %w", err)
		}
		if err := r.after("gorm:monitor_" + r.name + "_after"); err != nil {
			return fmt.Errorf("注册 GORM 监控回调失败: %w", err)
		}
	}
	p.logger.Info("GORM 监控插件初始化成功", zap.Duration("slow_threshold", p.slowThreshold))
	return nil
}

func (p *GORMMonitorPlugin) before(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
	if caller := p.getCallerInfo(); caller != nil {
		db.InstanceSet(callerKey, caller)
	}
}

func (p *GORMMonitorPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startTimeKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	duration := time.Since(start)
	slow := duration >= p.slowThreshold
	failed := db.Error != nil && db.Error != gorm.ErrRecordNotFound

	if !slow && !failed && !p.debug {
		return
	}

	fields := []zap.Field{
		zap.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
		zap.Int64("rows_affected", db.RowsAffected),
	}
	if db.Statement != nil {
		fields = append(fields, zap.String("table", db.Statement.Table), zap.String("sql", truncate(db.Statement.SQL.String(), 500)))
		if traceID := traceIDFrom(db.Statement.Context); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
	}
	if v, ok := db.InstanceGet(callerKey); ok {
		if caller, ok := v.(*CallerInfo); ok {
			fields = append(fields, zap.String("method", caller.Function), zap.String("file", caller.File), zap.Int("line", caller.Line))
		}
	}

	switch {
	case failed:
		fields = append(fields, zap.Error(db.Error), zap.String("error_code", errorCode(db.Error.Error())))
		p.logger.Error("SQL 执行失败", fields...)
	case slow:
		p.logger.Warn("慢查询", fields...)
	default:
		p.logger.Debug("SQL 执行", fields...)
	}
}

func (p *GORMMonitorPlugin) getCallerInfo() *CallerInfo {
	pcs := make([]uintptr, 24)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if p.isUserCode(frame.Function) {
			return &CallerInfo{
				Function: shortName(frame.Function),
				File:     shortName(frame.File),
				Line:     frame.Line,
			}
		}
		if !more {
			return nil
		}
	}
}

// isUserCode 跳过 gorm、插件自身与通用 dao 层
func (p *GORMMonitorPlugin) isUserCode(function string) bool {
	if strings.Contains(function, "gorm.io/") ||
		strings.Contains(function, "pkg/core/plugin") ||
		strings.Contains(function, "pkg/core/mvc") {
		return false
	}
	return strings.HasPrefix(function, p.userPackage)
}

func shortName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		return full[idx+1:]
	}
	return full
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... (truncated)"
}

func traceIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(consts.TraceKey).(string); ok {
		return v
	}
	return ""
}

func errorCode(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "duplicate"), strings.Contains(msg, "unique constraint"):
		return "DUPLICATE"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "connection"):
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}
