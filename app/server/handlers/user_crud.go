package handlers

import (
	"context"
	"core-api-base/app/server/api"
	"core-api-base/app/server/models"
	"core-api-base/app/server/repository"
	"core-api-base/app/server/types"
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

func (a *App) UserList(c echo.Context, params api.UserListParams) error {
	rctx := c.Request().Context()

	showAll, pageIndex, pageLimit := a.parsePagination(params.Page, params.Limit)
	users, usersCount, err := a.users.List(rctx, pageIndex*pageLimit, pageLimit)
	if err != nil {
		a.l.Error("failed to get user list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resUsers := []types.UserInfo{}
	for i := range users {
		resUsers = append(resUsers, types.UserInfoFromModel(&users[i]))
	}

	return c.JSON(http.StatusOK, &types.UserListResponse{
		Limit:   pageLimit,
		PageMax: a.calcMaxPage(usersCount, showAll, pageLimit),
		List:    resUsers,
	})
}

func (a *App) UserCreate(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.UserCreateRequest
	if err := a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	if taken, err := a.users.Taken(rctx, req.Username, req.Email, 0); err != nil {
		a.l.Error("failed to check user existence", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		return a.erm(c, http.StatusBadRequest, messageUserTaken)
	}

	// 处理密码
	passwordHash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建用户
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		PasswordHash: passwordHash,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.RefreshSecurityStamp()

	if err = a.users.Create(rctx, &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return a.erm(c, http.StatusBadRequest, messageUserTaken)
		}
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, types.UserInfoFromModel(&user))
}

// loadUser 读取路径中指定的用户，并要求调用者本人或管理员。
// 之后要写回的读取必须用 a.users.Get ，避免把缓存中的旧记录写回数据库
func (a *App) loadUser(c echo.Context, id uint, ownerOnly bool, get func(ctx context.Context, id uint) (*models.User, error)) (*models.User, error, int) {
	if ownerOnly {
		if _, err, statusCode := a.authOwner(c, id); err != nil {
			return nil, err, statusCode
		}
	}

	// 获得指定的用户
	user, err := get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err, http.StatusNotFound
		}
		a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
		return nil, err, http.StatusInternalServerError
	}

	return user, nil, http.StatusOK
}

func (a *App) UserInfoGet(c echo.Context, id uint) error {
	// 只读，可以走缓存
	user, err, statusCode := a.loadUser(c, id, true, a.users.GetByID)
	if err != nil {
		return a.er(c, statusCode)
	}

	return c.JSON(http.StatusOK, types.UserInfoFromModel(user))
}

func (a *App) UserInfoUpdate(c echo.Context, id uint) error {
	user, err, statusCode := a.loadUser(c, id, true, a.users.Get)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.UserUpdateRequest
	if err = a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	credentialsChanged := false
	if req.Username != nil && *req.Username != user.Username {
		user.Username = *req.Username
		credentialsChanged = true
	}
	if req.Email != nil && *req.Email != user.Email {
		user.Email = *req.Email
		credentialsChanged = true
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if credentialsChanged {
		if taken, err := a.users.Taken(rctx, user.Username, user.Email, user.ID); err != nil {
			a.l.Error("failed to check user existence", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		} else if taken {
			return a.erm(c, http.StatusBadRequest, messageUserTaken)
		}

		// 登录凭据变化，旧令牌失效
		user.RefreshSecurityStamp()
	}

	// 更新用户信息
	if err = a.users.Update(rctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return a.erm(c, http.StatusBadRequest, messageUserTaken)
		}
		a.l.Error("failed to update user", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, types.UserInfoFromModel(user))
}

func (a *App) UserPasswordUpdate(c echo.Context, id uint) error {
	user, err, statusCode := a.loadUser(c, id, true, a.users.Get)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.UserPasswordRequest
	if err = a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	newPasswordHash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	user.PasswordHash = newPasswordHash
	user.RefreshSecurityStamp()

	// 更新用户信息
	if err = a.users.Update(rctx, user); err != nil {
		a.l.Error("failed to update user password", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusNoContent)
}

func (a *App) UserRoleUpdate(c echo.Context, id uint) error {
	user, err, statusCode := a.loadUser(c, id, false, a.users.Get)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.UserRoleRequest
	if err = a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	if req.Role != user.Role {
		user.Role = req.Role
		user.RefreshSecurityStamp()

		// 更新用户信息
		if err = a.users.Update(rctx, user); err != nil {
			a.l.Error("failed to update user role", zap.Uint("id", user.ID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}

		a.l.Info("user role changed", zap.Uint("id", user.ID), zap.String("role", string(user.Role)))
	}

	return c.JSON(http.StatusOK, types.UserInfoFromModel(user))
}

func (a *App) UserRevokeTokens(c echo.Context, id uint) error {
	user, err, statusCode := a.revokeTokens(c, id)
	if err != nil {
		return a.er(c, statusCode)
	}

	return c.JSON(http.StatusOK, &types.RevokeResponse{
		Message: messageTokensRevoked,
		UserID:  user.ID,
	})
}

func (a *App) UserDelete(c echo.Context, id uint) error {
	// 删除用户
	if err := a.users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to delete user", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.l.Info("user deleted", zap.Uint("id", id))
	return c.NoContent(http.StatusNoContent)
}
