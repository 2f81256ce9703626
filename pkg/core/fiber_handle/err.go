package fiber_handle

import (
	"errors"

	errorc "linktrack/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

// ErrHandler 统一错误响应：{"status": code, "message": msg}
func ErrHandler(ctx *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return ctx.Status(e.Code).JSON(fiber.Map{"status": e.Code, "message": e.Message})
	}

	cError := errorc.ParseError(err)
	status := cError.HTTPStatus()
	body := fiber.Map{"status": cError.Code, "message": cError.Msg}
	if cError.TraceID != "" {
		body["traceId"] = cError.TraceID
	}
	// 5xx 不向调用方暴露内部信息
	if status >= fiber.StatusInternalServerError {
		body["message"] = "服务繁忙，请稍后再试"
	}
	return ctx.Status(status).JSON(body)
}
