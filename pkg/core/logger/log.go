package logger

import (
	"context"
	"sync"

	"linktrack/pkg/core/config"
	"linktrack/pkg/core/consts"

	"github.com/openzipkin/zipkin-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

type Log struct {
	*logrus.Entry
}

var (
	log *Log
	mu  sync.Mutex
)

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

func newLogrus(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(level)
	return logger
}

// InitLogger 初始化全局日志
func InitLogger(level string) *Log {
	mu.Lock()
	defer mu.Unlock()
	log = &Log{Entry: logrus.NewEntry(newLogrus(parseLevel(level)))}
	return log
}

// GetLogger 未初始化时返回 debug 级别的临时日志，便于测试直接使用
func GetLogger() *Log {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		return log
	}
	return &Log{Entry: logrus.NewEntry(newLogrus(logrus.DebugLevel))}
}

// Send2Cloud 追加阿里云 SLS 日志投递
func (l *Log) Send2Cloud(appName, host string, cfg config.LogConfig) {
	l.Entry.Logger.AddHook(NewSlsHook(appName, host, cfg))
}

func (l *Log) WithField(key string, value interface{}) *Log {
	return &Log{l.Entry.WithField(key, value)}
}

func (l *Log) WithFields(fields map[string]interface{}) *Log {
	return &Log{l.Entry.WithFields(fields)}
}

func (l *Log) GetLogger() *logrus.Entry {
	return l.Entry
}

func (l *Log) WithEntryName(entryName string) *Log {
	return l.WithField("EntryName", entryName)
}

func (l *Log) WithErr(err error) *Log {
	if err == nil {
		return l
	}
	return l.WithField("Err", err.Error())
}

func (l *Log) WithTrace(ctx context.Context) *Log {
	if ctx == nil {
		return l
	}
	if span := zipkin.SpanFromContext(ctx); span != nil {
		return l.WithField("TraceId", span.Context().TraceID.String())
	}
	traceID, ok := ctx.Value(consts.TraceKey).(string)
	if !ok {
		traceID = uuid.NewV4().String()
	}
	return l.WithField("TraceId", traceID)
}

func (l *Log) WithSlug(slug string) *Log {
	return l.WithField("slug", slug)
}
