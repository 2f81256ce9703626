package tracer

import (
	"context"

	"linktrack/pkg/core/consts"

	"github.com/openzipkin/zipkin-go"
)

// ZipkinTracer 基于 zipkin 的追踪实现
type ZipkinTracer struct {
	tracer  *zipkin.Tracer
	appName string
}

func NewZipkinTracer(tracer *zipkin.Tracer, appName string) *ZipkinTracer {
	return &ZipkinTracer{tracer: tracer, appName: appName}
}

func (t *ZipkinTracer) StartTrace(ctx context.Context, name string) (context.Context, string, func()) {
	span, newCtx := t.tracer.StartSpanFromContext(ctx, t.appName+"."+name)
	traceID := span.Context().TraceID.String()
	return context.WithValue(newCtx, consts.TraceKey, traceID), traceID, span.Finish
}
