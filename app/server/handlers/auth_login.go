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
	messageRegistered   = "User registered successfully"
	messageLoggedIn     = "Login successful"
	messageUserTaken    = "Username or email already exists"
	messageInvalidCreds = "Invalid credentials"
)

func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.RegisterRequest
	if err := a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	// 检查用户名和邮箱是否已被占用
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
		Role:         models.RoleUser,
		PasswordHash: passwordHash,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	user.RefreshSecurityStamp()

	if err = a.users.Create(rctx, &user); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, repository.ErrConflict) {
			return a.erm(c, http.StatusBadRequest, messageUserTaken)
		}
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 签出 JWT
	token, err := a.jwt.SignToken(&user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.l.Info("user registered", zap.Uint("id", user.ID), zap.String("username", user.Username))

	return c.JSON(http.StatusOK, &types.AuthResponse{
		Token:   token,
		User:    types.UserInfoFromModel(&user),
		Message: messageRegistered,
	})
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.LoginRequest
	if err := a.bind(c, &req); err != nil {
		return a.erm(c, http.StatusBadRequest, err.Error())
	}

	// 用户名或邮箱均可登录
	user, err := a.users.FindByLogin(rctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return a.erm(c, http.StatusUnauthorized, messageInvalidCreds)
		}
		a.l.Error("failed to find user", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 提取密码 hash 并进行校验
	if match, err := a.hasher.Verify(req.Password, user.PasswordHash); err != nil {
		a.l.Error("failed to check password", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		// 密码不一致
		return a.erm(c, http.StatusUnauthorized, messageInvalidCreds)
	}

	// 旧格式或旧成本的哈希顺便升级，失败不影响登录
	if a.hasher.NeedsRehash(user.PasswordHash) {
		if newHash, err := a.hasher.Hash(req.Password); err != nil {
			a.l.Warn("failed to rehash password", zap.Uint("id", user.ID), zap.Error(err))
		} else {
			user.PasswordHash = newHash
			if err = a.users.Update(rctx, user); err != nil {
				a.l.Warn("failed to store rehashed password", zap.Uint("id", user.ID), zap.Error(err))
			}
		}
	}

	// 签出 JWT
	token, err := a.jwt.SignToken(user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 返回
	return c.JSON(http.StatusOK, &types.AuthResponse{
		Token:   token,
		User:    types.UserInfoFromModel(user),
		Message: messageLoggedIn,
	})
}
