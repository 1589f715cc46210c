package middlewares

import (
	"core-api-base/app/server/authz"
	"core-api-base/app/server/jwt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Authenticated 受保护路由的完整链路：
// 签名与有效期 -> 角色重新校验 -> 安全戳校验 -> 日志 -> 策略
func Authenticated(j *jwt.JWT, users UserLoader, l *zap.Logger, policy authz.Policy) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		JWT(j, l),
		RoleRevalidation(users, l),
		SecurityStampValidation(users, l),
		AuthLogging(l),
		RequirePolicy(policy, l),
	}
}
