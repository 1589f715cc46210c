package handlers

import (
	"core-api-base/app/server/models"
	"core-api-base/app/server/repository"
	"core-api-base/app/server/types"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

const (
	messageUserNotFound  = "User not found"
	messageTokensRevoked = "Tokens revoked for user."
)

func (a *App) AuthProfile(c echo.Context) error {
	// 抓取 user 信息（认证）
	principal, err, statusCode := a.authPrincipal(c)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	user, err := a.users.GetByID(rctx, principal.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return a.erm(c, http.StatusNotFound, messageUserNotFound)
		}
		a.l.Error("failed to get user", zap.Uint("id", principal.UserID()), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, types.UserInfoFromModel(user))
}

// AuthTokenInfo 返回经过中间件修正后的声明摘要
func (a *App) AuthTokenInfo(c echo.Context) error {
	principal, err, statusCode := a.authPrincipal(c)
	if err != nil {
		return a.er(c, statusCode)
	}

	return c.JSON(http.StatusOK, &types.TokenInfo{
		UserID:        principal.UserID(),
		Username:      principal.Username(),
		Email:         principal.Email(),
		SecurityStamp: principal.SecurityStamp(),
		IsAdmin:       principal.IsAdmin(),
		HasUserRole:   principal.HasRole(string(models.RoleUser)),
		HasAdminRole:  principal.HasRole(string(models.RoleAdmin)),
	})
}

// AuthRevokeToken 刷新调用者自己的安全戳，此前签发的令牌全部失效
func (a *App) AuthRevokeToken(c echo.Context) error {
	principal, err, statusCode := a.authPrincipal(c)
	if err != nil {
		return a.er(c, statusCode)
	}

	user, err, statusCode := a.revokeTokens(c, principal.UserID())
	if err != nil {
		if statusCode == http.StatusNotFound {
			return a.erm(c, statusCode, messageUserNotFound)
		}
		return a.er(c, statusCode)
	}

	return c.JSON(http.StatusOK, &types.RevokeResponse{
		Message: messageTokensRevoked,
		UserID:  user.ID,
	})
}

func (a *App) revokeTokens(c echo.Context, id uint) (*models.User, error, int) {
	rctx := c.Request().Context()

	// 直接读数据库，缓存中的记录可能已经过时
	user, err := a.users.Get(rctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err, http.StatusNotFound
		}
		a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
		return nil, err, http.StatusInternalServerError
	}

	user.RefreshSecurityStamp()
	if err = a.users.Update(rctx, user); err != nil {
		a.l.Error("failed to revoke tokens", zap.Uint("id", id), zap.Error(err))
		return nil, err, http.StatusInternalServerError
	}

	a.l.Info("tokens revoked", zap.Uint("id", id))
	return user, nil, http.StatusOK
}
