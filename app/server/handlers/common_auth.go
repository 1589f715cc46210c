package handlers

import (
	"core-api-base/app/server/claims"
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
)

// authPrincipal 读取中间件校验过的身份， id 为 0 时视为未认证
func (a *App) authPrincipal(c echo.Context) (*claims.Principal, error, int) {
	principal := claims.Get(c)
	if principal == nil || principal.UserID() == 0 {
		return nil, fmt.Errorf("missing authenticated principal"), http.StatusUnauthorized
	}
	return principal, nil, http.StatusOK
}

// authOwner 只允许访问自己的数据，管理员除外
func (a *App) authOwner(c echo.Context, id uint) (*claims.Principal, error, int) {
	principal, err, statusCode := a.authPrincipal(c)
	if err != nil {
		return nil, err, statusCode
	}

	if principal.UserID() != id && !principal.IsAdmin() {
		return nil, fmt.Errorf("user %d cannot access user %d", principal.UserID(), id), http.StatusForbidden
	}

	return principal, nil, http.StatusOK
}
