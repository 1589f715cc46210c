package middlewares

import (
	"core-api-base/app/server/claims"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func AuthLogging(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if principal := claims.Get(c); principal != nil {
				l.Info("authenticated request",
					zap.Uint("userId", principal.UserID()),
					zap.String("username", principal.Username()),
					zap.String("method", c.Request().Method),
					zap.String("path", c.Request().URL.Path),
				)
			}
			return next(c)
		}
	}
}
