package consts

const (
	// TraceKey 上下文中保存 TraceID 的键
	TraceKey = "traceId"
	// TraceHeaderName 服务间传递父级追踪上下文的请求头
	TraceHeaderName = "X-Trace-Context"

	EnvProd = "prod"
	EnvDev  = "dev"
	EnvTest = "test"
)
