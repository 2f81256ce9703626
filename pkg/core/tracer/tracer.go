package tracer

import (
	"context"

	"linktrack/pkg/core/consts"

	uuid "github.com/satori/go.uuid"
)

// Tracer 请求追踪抽象，未配置 zipkin 时使用 SimpleTracer
type Tracer interface {
	// StartTrace 开启新的追踪，返回携带 TraceID 的上下文和结束函数
	StartTrace(ctx context.Context, name string) (context.Context, string, func())
}

// SimpleTracer 只生成并传递 TraceID
type SimpleTracer struct{}

func NewSimpleTracer() *SimpleTracer {
	return &SimpleTracer{}
}

func (t *SimpleTracer) StartTrace(ctx context.Context, name string) (context.Context, string, func()) {
	traceID := uuid.NewV4().String()
	return context.WithValue(ctx, consts.TraceKey, traceID), traceID, func() {}
}

// Detach 复制追踪信息到一个不随请求取消的新上下文
func Detach(ctx context.Context) context.Context {
	detached := context.Background()
	if ctx == nil {
		return detached
	}
	if traceID, ok := ctx.Value(consts.TraceKey).(string); ok {
		detached = context.WithValue(detached, consts.TraceKey, traceID)
	}
	return detached
}
