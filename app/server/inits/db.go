package inits

import (
	"context"
	"core-api-base/app/server/config"
	"core-api-base/app/server/models"
	"core-api-base/app/server/password"
	"fmt"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func DB(cfg config.Database, seed config.Seed, hasher *password.Hasher, l *zap.Logger) (db *gorm.DB, err error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString)
	default:
		dialector = postgres.Open(cfg.ConnectionString)
	}

	logLevel, ok := gormLogLevels[cfg.LogLevel]
	if !ok {
		logLevel = logger.Warn
	}

	// 打开连接
	if db, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite 只允许单个写连接，内存库的每个连接也是相互独立的
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// 迁移
	if cfg.AutoMigrate {
		if err = mig(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 初始化启动数据
	if seed.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout())
		defer cancel()
		if err = initData(ctx, db, seed, hasher, l); err != nil {
			return nil, fmt.Errorf("failed to init data into database: %w", err)
		}
	}

	// 返回
	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
	)
}

func initData(ctx context.Context, db *gorm.DB, seed config.Seed, hasher *password.Hasher, l *zap.Logger) (err error) {
	// 查询现有记录数量
	var counter int64

	// 初始化用户
	if err = db.WithContext(ctx).Model(&models.User{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter > 0 {
		return nil
	}

	// 没有任何用户，添加初始管理员
	passwordHash, err := hasher.Hash(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	admin := models.User{
		Username:     seed.AdminUsername,
		Email:        seed.AdminEmail,
		DisplayName:  "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: passwordHash,
	}
	admin.RefreshSecurityStamp()

	// 插入记录
	if err = db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	l.Info("initial admin user created", zap.Uint("id", admin.ID), zap.String("username", admin.Username))
	return nil
}
