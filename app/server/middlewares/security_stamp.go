package middlewares

import (
	"core-api-base/app/server/claims"
	"core-api-base/app/server/repository"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// SecurityStampValidation 比对令牌中的安全戳与数据库中的当前值，不一致即视为已吊销。
// 没有安全戳的旧令牌直接放行
func SecurityStampValidation(users UserLoader, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := claims.Get(c)
			if principal == nil {
				return next(c)
			}

			id := principal.UserID()
			stamp := principal.SecurityStamp()
			if id == 0 || stamp == "" {
				return next(c)
			}

			user, err := users.Get(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return abort(c, http.StatusUnauthorized, MessageUserNotFound)
				}
				l.Error("failed to load user for security stamp validation", zap.Uint("id", id), zap.Error(err))
				return abort(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}

			if user.SecurityStamp != stamp {
				l.Warn("rejected token with outdated security stamp", zap.Uint("id", id))
				return abort(c, http.StatusUnauthorized, MessageTokenInvalidated)
			}

			return next(c)
		}
	}
}
