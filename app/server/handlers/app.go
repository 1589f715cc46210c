package handlers

import (
	"core-api-base/app/server/api"
	"core-api-base/app/server/health"
	"core-api-base/app/server/jwt"
	"core-api-base/app/server/password"
	"core-api-base/app/server/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var _ api.ServerInterface = (*App)(nil)

type App struct {
	l        *zap.Logger         // 日志
	users    *repository.Users   // 用户仓库
	jwt      *jwt.JWT            // JWT ，用于无状态验证
	hasher   *password.Hasher    // 密码哈希
	health   *health.Registry    // 健康检查
	validate *validator.Validate // 请求体校验
}

func NewApp(l *zap.Logger, users *repository.Users, j *jwt.JWT, hasher *password.Hasher, hr *health.Registry) *App {
	return &App{
		l:        l,
		users:    users,
		jwt:      j,
		hasher:   hasher,
		health:   hr,
		validate: newValidator(),
	}
}
