package errorc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"linktrack/pkg/core/consts"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	enableFullStack = true
	stackBufferPool = sync.Pool{
		New: func() interface{} {
			return make([]byte, 4096)
		},
	}
)

// notfounds 视为"记录不存在"的第三方错误
var notfounds = []error{gorm.ErrRecordNotFound, redis.Nil}

type ErrorBuilder struct {
	entryName string
}

func NewErrorBuilder(entryName string) *ErrorBuilder {
	return &ErrorBuilder{entryName: entryName}
}

func (e *ErrorBuilder) New(msg string, err error) *Error {
	stack := callerFrame(2)
	stack.Msg = msg
	stack.Cause = err
	stack.Entry = e.entryName
	stack.ErrorCode = getErrCode(err)
	return stack
}

// New err or msg can nil
func New(msg string, err error) *Error {
	stack := callerFrame(2)
	stack.Msg = msg
	stack.Cause = err
	stack.ErrorCode = getErrCode(err)
	return stack
}

// Quick 不采集调用位置，用于热路径
func (e *ErrorBuilder) Quick(msg string, err error) *Error {
	return &Error{Msg: msg, Cause: err, Entry: e.entryName, ErrorCode: getErrCode(err)}
}

func Quick(msg string, err error) *Error {
	return &Error{Msg: msg, Cause: err, ErrorCode: getErrCode(err)}
}

func (e *ErrorBuilder) NotFound(msg string) *Error {
	return &Error{Msg: msg, Entry: e.entryName, ErrorCode: ErrorCodeNotFound}
}

func (e *ErrorBuilder) BadRequest(msg string) *Error {
	return &Error{Msg: msg, Entry: e.entryName, ErrorCode: ErrorCodeValid}
}

func (e *ErrorBuilder) Internal(msg string) *Error {
	return &Error{Msg: msg, Entry: e.entryName, ErrorCode: ErrorCodeInternal}
}

func (e *Error) WithTraceID(ctx context.Context) *Error {
	e.TraceID = ""
	if ctx != nil {
		if traceID, ok := ctx.Value(consts.TraceKey).(string); ok {
			e.TraceID = traceID
		}
	}
	return e
}

func (e *Error) WithEntry(entry string) *Error {
	e.Entry = entry
	return e
}

func (e *Error) WithCode(code *ErrorCode) *Error {
	e.ErrorCode = code
	return e
}

// WithCause 链式添加原因错误
func (e *Error) WithCause(err error) *Error {
	if e != nil {
		e.Cause = err
	}
	return e
}

// DB 标记为数据库错误，已识别为 NotFound 的保持不变
func (e *Error) DB() *Error {
	if e.ErrorCode == ErrorCodeNotFound {
		return e
	}
	e.ErrorCode = ErrorCodeDB
	return e
}

func (e *Error) Third() *Error {
	e.ErrorCode = ErrorCodeThird
	return e
}

func (e *Error) ValidWithCtx() *Error {
	e.ErrorCode = ErrorCodeValid
	return e
}

func (e *Error) NoAuth() *Error {
	e.ErrorCode = ErrorCodeNoAuth
	return e
}

func (e *Error) Forbidden() *Error {
	e.ErrorCode = ErrorCodeForbidden
	return e
}

func (e *Error) NotFound() *Error {
	e.ErrorCode = ErrorCodeNotFound
	return e
}

func (e *Error) Conflict() *Error {
	e.ErrorCode = ErrorCodeConflict
	return e
}

func (e *Error) TooMany() *Error {
	e.ErrorCode = ErrorCodeTooMany
	return e
}

func (e *Error) Unavailable() *Error {
	e.ErrorCode = ErrorCodeUnavailable
	return e
}

// Unwrap 让 errors.Is/As 能穿透到原始错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// chain 从外到内收集 *Error 链
func (e *Error) chain() []*Error {
	var errChain []*Error
	for curr := e; curr != nil; {
		errChain = append(errChain, curr)
		next, ok := curr.Cause.(*Error)
		if !ok {
			break
		}
		curr = next
	}
	return errChain
}

// rootCause 返回包装了第三方错误的最内层节点及该第三方错误
func rootCause(errChain []*Error) (*Error, error) {
	for i := len(errChain) - 1; i >= 0; i-- {
		if errChain[i].Cause == nil {
			continue
		}
		if _, ok := errChain[i].Cause.(*Error); !ok {
			return errChain[i], errChain[i].Cause
		}
	}
	if len(errChain) == 0 {
		return nil, nil
	}
	last := errChain[len(errChain)-1]
	return last, last.Cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	errChain := e.chain()
	root, original := rootCause(errChain)

	var sb strings.Builder
	sb.WriteString("========================= Root Cause =========================\n")
	if root != nil {
		if original != nil {
			sb.WriteString(fmt.Sprintf("Error: %s\n", original.Error()))
		}
		if root.FileName != "" {
			sb.WriteString(fmt.Sprintf("Location: %s:%d\n", root.FileName, root.Line))
		}
		if root.FuncName != "" {
			sb.WriteString(fmt.Sprintf("Function: %s\n", root.FuncName))
		}
		if root.Msg != "" {
			sb.WriteString(fmt.Sprintf("Message: %s\n", root.Msg))
		}
		if root.TraceID != "" {
			sb.WriteString(fmt.Sprintf("Trace ID: %s\n", root.TraceID))
		}
	}

	sb.WriteString("\n======================= Full Error Trace =======================\n")
	for i, item := range errChain {
		sb.WriteString(fmt.Sprintf("%d: ", i+1))
		if item.ErrorCode != nil {
			sb.WriteString(fmt.Sprintf("[%s] ", item.ErrorCode.String()))
		}
		sb.WriteString(item.Msg)
		if item.FileName != "" {
			sb.WriteString(fmt.Sprintf("\n   at %s:%d", item.FileName, item.Line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("==============================================================\n")
	return sb.String()
}

// RootCause returns a one-line description of the innermost cause.
func (e *Error) RootCause() string {
	if e == nil {
		return ""
	}
	root, original := rootCause(e.chain())
	if root == nil {
		return e.Msg
	}

	var sb strings.Builder
	sb.WriteString(root.Msg)
	if original != nil {
		sb.WriteString(fmt.Sprintf(": %v", original))
	}
	if root.FileName != "" {
		sb.WriteString(fmt.Sprintf(" at %s:%d", root.FileName, root.Line))
	}
	return sb.String()
}

// ToLog 以结构化字段输出整条错误链
func (e *Error) ToLog(log *logrus.Entry, msgs ...string) *Error {
	if e == nil {
		return nil
	}
	errChain := e.chain()
	root, original := rootCause(errChain)

	fields := logrus.Fields{}
	if root != nil {
		fields["root_cause_file"] = root.FileName
		fields["root_cause_line"] = root.Line
		fields["root_cause_msg"] = root.Msg
		if original != nil {
			fields["root_cause_original_error"] = original.Error()
		}
		if root.ErrorCode != nil {
			fields["root_cause_error_code"] = root.ErrorCode.String()
		}
	}

	levels := make([]map[string]interface{}, 0, len(errChain))
	for _, item := range errChain {
		level := map[string]interface{}{
			"file": item.FileName,
			"line": item.Line,
			"func": item.FuncName,
			"msg":  item.Msg,
		}
		if item.ErrorCode != nil {
			level["code"] = item.ErrorCode.String()
		}
		if item == e && enableFullStack {
			if stack := item.fullStack(); stack != "" {
				level["stack_trace"] = stack
			}
		}
		levels = append(levels, level)
	}
	fields["error_chain"] = levels
	if e.TraceID != "" {
		fields["trace_id"] = e.TraceID
	}

	finalMsg := e.Msg
	if len(msgs) > 0 {
		finalMsg = strings.Join(msgs, ", ")
	}
	if finalMsg == "" {
		finalMsg = "An error occurred"
	}

	log.WithFields(fields).Error(finalMsg)
	return e
}

func callerFrame(skip int) *Error {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return &Error{FileName: "<unknown>", FuncName: "<unknown>"}
	}
	funcName := "<unknown>"
	if details := runtime.FuncForPC(pc); details != nil {
		funcName = details.Name()
	}
	return &Error{FileName: file, Line: line, FuncName: funcName}
}

// fullStack 延迟获取完整堆栈
func (e *Error) fullStack() string {
	if e.Stack != "" || !enableFullStack {
		return e.Stack
	}
	buf := stackBufferPool.Get().([]byte)
	defer stackBufferPool.Put(buf)

	n := runtime.Stack(buf, false)
	e.Stack = string(buf[:n])
	return e.Stack
}

// SetStackTraceEnabled 控制是否输出完整堆栈
func SetStackTraceEnabled(enabled bool) {
	enableFullStack = enabled
}

func getErrCode(err error) *ErrorCode {
	if err == nil {
		return ErrorCodeUnknown
	}
	var inner *Error
	if errors.As(err, &inner) && inner.ErrorCode != nil {
		return inner.ErrorCode
	}
	for _, target := range notfounds {
		if errors.Is(err, target) {
			return ErrorCodeNotFound
		}
	}
	return ErrorCodeUnknown
}

func ParseError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Quick(err.Error(), err)
}

func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.ErrorCode == ErrorCodeNotFound {
		return true
	}
	for _, target := range notfounds {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HasCode 判断错误链上是否带有指定错误码
func HasCode(err error, code *ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	for _, item := range e.chain() {
		if item.ErrorCode == code {
			return true
		}
	}
	return false
}
