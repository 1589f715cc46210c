package middlewares

import (
	"core-api-base/app/server/authz"
	"core-api-base/app/server/claims"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// RequirePolicy 必须放在角色重新校验之后
func RequirePolicy(policy authz.Policy, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := claims.Get(c)
			if principal == nil {
				return abort(c, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			}

			if !policy.Allows(principal) {
				l.Debug("policy denied",
					zap.String("policy", policy.Name),
					zap.Uint("id", principal.UserID()),
					zap.String("path", c.Request().URL.Path),
				)
				return abort(c, http.StatusForbidden, http.StatusText(http.StatusForbidden))
			}

			return next(c)
		}
	}
}
