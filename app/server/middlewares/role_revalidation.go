package middlewares

import (
	"core-api-base/app/server/claims"
	"core-api-base/app/server/repository"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// RoleRevalidation 用数据库中的当前角色替换令牌中的角色，降级或升级在下一次请求立即生效
func RoleRevalidation(users UserLoader, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := claims.Get(c)
			if principal == nil {
				return next(c)
			}

			// 没有可用的用户 ID ，无从修正
			id := principal.UserID()
			if id == 0 {
				return next(c)
			}

			user, err := users.Get(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return abort(c, http.StatusUnauthorized, MessageUserNotFound)
				}
				l.Error("failed to load user for role revalidation", zap.Uint("id", id), zap.Error(err))
				return abort(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}

			claims.Set(c, principal.WithRole(user.Role))
			l.Debug("role revalidated", zap.Uint("id", id), zap.String("role", string(user.Role)))

			return next(c)
		}
	}
}
