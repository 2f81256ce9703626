package tracer

import (
	"context"
	"testing"
	"time"

	"linktrack/pkg/core/consts"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTracer_StartTrace(t *testing.T) {
	ctx, traceID, finish := NewSimpleTracer().StartTrace(context.Background(), "r")
	defer finish()

	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, ctx.Value(consts.TraceKey))
}

// TestDetach 请求上下文取消后，分离出的上下文仍然可用并保留 TraceID
func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(context.WithValue(context.Background(), consts.TraceKey, "t-1"), time.Millisecond)
	cancel()

	detached := Detach(parent)
	assert.Error(t, parent.Err())
	assert.NoError(t, detached.Err())
	assert.Equal(t, "t-1", detached.Value(consts.TraceKey))
}
