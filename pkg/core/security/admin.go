package security

import (
	"strconv"
	"strings"
	"time"

	errorc "linktrack/pkg/core/err"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type AdminAuth struct {
	jwtClient *JwtClient
}

const (
	AdminKey  = "admin"
	SuperRole = "admin:super"
)

// AdminClaims 管理端令牌，由外部认证服务签发
type AdminClaims struct {
	jwt.RegisteredClaims
	ID      int64    `json:"id"`
	Account string   `json:"account,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

func (a *AdminClaims) IsSuper() bool {
	for _, role := range a.Roles {
		if role == SuperRole {
			return true
		}
	}
	return false
}

func NewAdminAuth(secret []byte, expireTime time.Duration) *AdminAuth {
	return &AdminAuth{
		jwtClient: NewJwtClient(secret, expireTime),
	}
}

// CreateAdminToken 测试与运维脚本使用
func (a *AdminAuth) CreateAdminToken(claims *AdminClaims) (string, int64, error) {
	return a.jwtClient.CreateToken(claims)
}

// RequireAdminAuth 管理员权限校验中间件
func (a *AdminAuth) RequireAdminAuth(requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return errorc.New("缺少管理员令牌", nil).NoAuth()
		}

		claims, err := a.jwtClient.ParseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return errorc.New("管理员令牌无效", err).NoAuth()
		}
		a.jwtClient.SaveToContext(c, claims)

		// 超级管理员跳过角色校验
		if claims.IsSuper() {
			return c.Next()
		}
		if err := a.jwtClient.ValidateRoles(claims, requiredRoles); err != nil {
			return errorc.New("权限不足", err).Forbidden()
		}
		return c.Next()
	}
}

func GetAdminClaims(c *fiber.Ctx) (*AdminClaims, error) {
	claims, ok := c.Locals(AdminKey).(*AdminClaims)
	if !ok || claims == nil {
		return nil, errorc.New("未找到管理员信息", nil).NoAuth()
	}
	return claims, nil
}

// GetAdminActor 审计记录使用的操作人标识
func GetAdminActor(c *fiber.Ctx) string {
	claims, err := GetAdminClaims(c)
	if err != nil {
		return "unknown"
	}
	if claims.Account != "" {
		return claims.Account
	}
	return "admin#" + strconv.FormatInt(claims.ID, 10)
}
