package fiber_handle

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	errorc "linktrack/pkg/core/err"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestErrHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"业务错误透传信息", errorc.New("短链接不存在", nil).NotFound(), fiber.StatusNotFound, "短链接不存在"},
		{"冲突", errorc.New("短码已存在", nil).Conflict(), fiber.StatusConflict, "短码已存在"},
		{"数据库错误隐藏细节", errorc.New("查询失败", errors.New("dial tcp")).DB(), fiber.StatusInternalServerError, "服务繁忙，请稍后再试"},
		{"fiber 错误", fiber.NewError(fiber.StatusMethodNotAllowed, "method not allowed"), fiber.StatusMethodNotAllowed, "method not allowed"},
		{"普通错误", errors.New("boom"), fiber.StatusInternalServerError, "服务繁忙，请稍后再试"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMessage, gjson.GetBytes(raw, "message").String())
		})
	}
}
