package middlewares

import (
	"core-api-base/app/server/claims"
	"core-api-base/app/server/jwt"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// JWT 校验 Authorization: Bearer 令牌，成功后把 Principal 放入上下文。
// 过期、格式错误、签名错误对调用方没有区别，统一返回 401
func JWT(j *jwt.JWT, l *zap.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: claims.ContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			mapClaims, err := j.ParseToken(auth)
			if err != nil {
				return nil, err
			}
			return claims.FromMapClaims(mapClaims), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l.Debug("rejected bearer token", zap.String("path", c.Request().URL.Path), zap.Error(err))
			return abort(c, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		},
	})
}
