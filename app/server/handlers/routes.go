package handlers

import (
	"core-api-base/app/server/api"
	"core-api-base/app/server/authz"
	"core-api-base/app/server/middlewares"
	"github.com/labstack/echo/v4"
)

func (a *App) RegisterRoutes(e *echo.Echo) {
	userOrAdmin := middlewares.Authenticated(a.jwt, a.users, a.l, authz.UserOrAdmin)
	adminOnly := middlewares.Authenticated(a.jwt, a.users, a.l, authz.AdminOnly)

	api.RegisterHandlers(e, a, func(security api.Security) []echo.MiddlewareFunc {
		switch security {
		case api.AdminOnly:
			return adminOnly
		case api.UserOrAdmin:
			return userOrAdmin
		default:
			return nil
		}
	})
}
