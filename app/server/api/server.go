// Package api 按 apidocs/openapi.yaml 描述的操作定义服务接口、参数绑定和路由注册
package api

import (
	"core-api-base/app/server/utils"
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"strconv"
)

// ServerInterface 与 openapi.yaml 中的 operationId 一一对应
type ServerInterface interface {
	// (POST /auth/register)
	AuthRegister(ctx echo.Context) error
	// (POST /auth/login)
	AuthLogin(ctx echo.Context) error
	// (GET /auth/profile)
	AuthProfile(ctx echo.Context) error
	// (GET /auth/token-info)
	AuthTokenInfo(ctx echo.Context) error
	// (POST /auth/revoke-token)
	AuthRevokeToken(ctx echo.Context) error

	// (GET /users)
	UserList(ctx echo.Context, params UserListParams) error
	// (POST /users)
	UserCreate(ctx echo.Context) error
	// (GET /users/{id})
	UserInfoGet(ctx echo.Context, id uint) error
	// (PUT /users/{id})
	UserInfoUpdate(ctx echo.Context, id uint) error
	// (DELETE /users/{id})
	UserDelete(ctx echo.Context, id uint) error
	// (PUT /users/{id}/password)
	UserPasswordUpdate(ctx echo.Context, id uint) error
	// (PUT /users/{id}/role)
	UserRoleUpdate(ctx echo.Context, id uint) error
	// (POST /users/{id}/revoke-tokens)
	UserRevokeTokens(ctx echo.Context, id uint) error

	// (GET /health)
	HealthCheck(ctx echo.Context) error
	// (GET /health/config)
	HealthConfig(ctx echo.Context) error
	// (GET /health/tag/{tag})
	HealthByTag(ctx echo.Context, tag string) error
	// (GET /health/tags)
	HealthTags(ctx echo.Context) error
}

// UserListParams UserList 的查询参数
type UserListParams struct {
	Page  *uint `form:"page,omitempty" json:"page,omitempty"`
	Limit *uint `form:"limit,omitempty" json:"limit,omitempty"`
}

// Security 操作要求的访问策略
type Security int

const (
	Public Security = iota
	UserOrAdmin
	AdminOnly
)

// ServerInterfaceWrapper 从请求中绑定带类型的参数，再交给 ServerInterface
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func invalidParam(name string, err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
}

func bindID(ctx echo.Context) (uint, error) {
	id, err := utils.ParseID(ctx.Param("id"))
	if err != nil {
		return 0, invalidParam("id", err)
	}
	return id, nil
}

func bindQueryUint(ctx echo.Context, name string, dest **uint) error {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return invalidParam(name, err)
	}
	*dest = utils.P(uint(v))
	return nil
}

func (w *ServerInterfaceWrapper) AuthRegister(ctx echo.Context) error {
	return w.Handler.AuthRegister(ctx)
}

func (w *ServerInterfaceWrapper) AuthLogin(ctx echo.Context) error {
	return w.Handler.AuthLogin(ctx)
}

func (w *ServerInterfaceWrapper) AuthProfile(ctx echo.Context) error {
	return w.Handler.AuthProfile(ctx)
}

func (w *ServerInterfaceWrapper) AuthTokenInfo(ctx echo.Context) error {
	return w.Handler.AuthTokenInfo(ctx)
}

func (w *ServerInterfaceWrapper) AuthRevokeToken(ctx echo.Context) error {
	return w.Handler.AuthRevokeToken(ctx)
}

func (w *ServerInterfaceWrapper) UserList(ctx echo.Context) error {
	var params UserListParams
	if err := bindQueryUint(ctx, "page", &params.Page); err != nil {
		return err
	}
	if err := bindQueryUint(ctx, "limit", &params.Limit); err != nil {
		return err
	}
	return w.Handler.UserList(ctx, params)
}

func (w *ServerInterfaceWrapper) UserCreate(ctx echo.Context) error {
	return w.Handler.UserCreate(ctx)
}

// withID 绑定路径参数 id 后调用 handler
func (w *ServerInterfaceWrapper) withID(handler func(echo.Context, uint) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := bindID(ctx)
		if err != nil {
			return err
		}
		return handler(ctx, id)
	}
}

func (w *ServerInterfaceWrapper) HealthCheck(ctx echo.Context) error {
	return w.Handler.HealthCheck(ctx)
}

func (w *ServerInterfaceWrapper) HealthConfig(ctx echo.Context) error {
	return w.Handler.HealthConfig(ctx)
}

func (w *ServerInterfaceWrapper) HealthByTag(ctx echo.Context) error {
	tag := ctx.Param("tag")
	if tag == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter tag: empty")
	}
	return w.Handler.HealthByTag(ctx, tag)
}

func (w *ServerInterfaceWrapper) HealthTags(ctx echo.Context) error {
	return w.Handler.HealthTags(ctx)
}

// EchoRouter 同时适用于 *echo.Echo 和 *echo.Group
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers 注册全部操作， guard 按操作的访问策略给出要挂载的中间件
func RegisterHandlers(router EchoRouter, si ServerInterface, guard func(Security) []echo.MiddlewareFunc) {
	w := &ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST("/auth/register", w.AuthRegister, guard(Public)...)
	router.POST("/auth/login", w.AuthLogin, guard(Public)...)
	router.GET("/auth/profile", w.AuthProfile, guard(UserOrAdmin)...)
	router.GET("/auth/token-info", w.AuthTokenInfo, guard(UserOrAdmin)...)
	router.POST("/auth/revoke-token", w.AuthRevokeToken, guard(AdminOnly)...)

	router.GET("/users", w.UserList, guard(AdminOnly)...)
	router.POST("/users", w.UserCreate, guard(AdminOnly)...)
	router.GET("/users/:id", w.withID(si.UserInfoGet), guard(UserOrAdmin)...)
	router.PUT("/users/:id", w.withID(si.UserInfoUpdate), guard(UserOrAdmin)...)
	router.DELETE("/users/:id", w.withID(si.UserDelete), guard(AdminOnly)...)
	router.PUT("/users/:id/password", w.withID(si.UserPasswordUpdate), guard(UserOrAdmin)...)
	router.PUT("/users/:id/role", w.withID(si.UserRoleUpdate), guard(AdminOnly)...)
	router.POST("/users/:id/revoke-tokens", w.withID(si.UserRevokeTokens), guard(AdminOnly)...)

	router.GET("/health", w.HealthCheck, guard(Public)...)
	router.GET("/health/config", w.HealthConfig, guard(Public)...)
	router.GET("/health/tag/:tag", w.HealthByTag, guard(Public)...)
	router.GET("/health/tags", w.HealthTags, guard(Public)...)
}
