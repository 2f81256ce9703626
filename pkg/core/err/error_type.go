package errorc

import "fmt"

type Error struct {
	*ErrorCode
	Msg      string
	Cause    error  `json:"-"`
	Stack    string `json:"-"`
	TraceID  string
	Entry    string `json:"-"`
	FileName string `json:"-"`
	Line     int    `json:"-"`
	FuncName string `json:"-"`
}

type ErrorCode struct {
	Code int
	Name string
}

func (c *ErrorCode) String() string {
	return fmt.Sprintf("%d: %s", c.Code, c.Name)
}

// HTTPStatus 错误码对应的 HTTP 状态，业务扩展码（501/502）统一回落为 500
func (c *ErrorCode) HTTPStatus() int {
	switch c {
	case ErrorCodeDB, ErrorCodeThird:
		return 500
	case nil:
		return 500
	}
	return c.Code
}

var (
	ErrorCodeUnknown     = &ErrorCode{500, "Unknown"}
	ErrorCodeDB          = &ErrorCode{501, "DB"}
	ErrorCodeThird       = &ErrorCode{502, "Third"}
	ErrorCodeValid       = &ErrorCode{400, "ValidWithCtx"}
	ErrorCodeNoAuth      = &ErrorCode{401, "Unauthenticated"}
	ErrorCodeForbidden   = &ErrorCode{403, "Forbidden"}
	ErrorCodeNotFound    = &ErrorCode{404, "NotFound"}
	ErrorCodeConflict    = &ErrorCode{409, "Conflict"}
	ErrorCodeTooMany     = &ErrorCode{429, "TooManyRequests"}
	ErrorCodeUnavailable = &ErrorCode{503, "Unavailable"}
	ErrorCodeInternal    = &ErrorCode{503, "InternalError"}
)
