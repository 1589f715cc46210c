package middlewares

import (
	"context"
	"core-api-base/app/server/models"
	"core-api-base/app/server/types"
	"github.com/labstack/echo/v4"
)

const (
	MessageUserNotFound     = "User not found"
	MessageTokenInvalidated = "Token has been invalidated. Please login again."
)

// UserLoader 按 id 从数据库读取当前用户，找不到时返回 repository.ErrNotFound。
// 角色和安全戳以数据库为准，这里不能经过缓存
type UserLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

func abort(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: &message,
	})
}
