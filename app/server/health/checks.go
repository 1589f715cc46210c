package health

import (
	"context"
	"core-api-base/app/server/config"
	"core-api-base/app/server/jwt"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"strings"
)

// Config 检查关键配置是否有效，并附带脱敏后的摘要
func Config(cfg *config.Config, l *zap.Logger) CheckFunc {
	return func(ctx context.Context) Result {
		var problems []string
		for _, p := range cfg.ValidationErrors() {
			switch {
			case strings.HasPrefix(p, "JWT."), strings.HasPrefix(p, "Database."), strings.HasPrefix(p, "Cors."):
				problems = append(problems, p)
			}
		}

		// 额外检查
		if cfg.JWT.SecretKey != "" && len(cfg.JWT.SecretKey) < jwt.MinKeyLength {
			problems = append(problems, fmt.Sprintf("JWT: SecretKey too short (minimum %d characters)", jwt.MinKeyLength))
		}
		if cfg.Cors.Insecure() {
			problems = append(problems, "CORS: insecure configuration - AllowCredentials=true with AllowedOrigins=*")
		}

		data := map[string]any{
			"jwt_config":      cfg.JWT.Summary(),
			"jwt_valid":       !hasPrefix(problems, "JWT"),
			"database_config": cfg.Database.Summary(),
			"database_valid":  !hasPrefix(problems, "Database"),
			"cors_config":     cfg.Cors.Summary(),
			"cors_valid":      !hasPrefix(problems, "Cors", "CORS"),
		}

		if len(problems) > 0 {
			l.Error("configuration health check failed", zap.Strings("problems", problems))
			return Unhealthy(
				"invalid configuration found: "+strings.Join(problems, "; "),
				errors.New(strings.Join(problems, "; ")),
				data,
			)
		}

		return Healthy("all essential configuration is valid", data)
	}
}

func hasPrefix(problems []string, prefixes ...string) bool {
	for _, p := range problems {
		for _, prefix := range prefixes {
			if strings.HasPrefix(p, prefix) {
				return true
			}
		}
	}
	return false
}

// Database 检查数据库连接池能否连通
func Database(db *gorm.DB) CheckFunc {
	return func(ctx context.Context) Result {
		sqlDB, err := db.DB()
		if err != nil {
			return Unhealthy("failed to get database pool", err, nil)
		}
		if err = sqlDB.PingContext(ctx); err != nil {
			return Unhealthy("database is unreachable", err, nil)
		}

		stats := sqlDB.Stats()
		return Healthy("database is reachable", map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		})
	}
}

// Redis 检查缓存服务能否连通
func Redis(rdb *redis.Client) CheckFunc {
	return func(ctx context.Context) Result {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return Unhealthy("redis is unreachable", err, nil)
		}
		return Healthy("redis is reachable", nil)
	}
}
