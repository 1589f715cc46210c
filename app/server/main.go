package main

import (
	"context"
	"core-api-base/app/server/apidocs"
	"core-api-base/app/server/handlers"
	"core-api-base/app/server/health"
	"core-api-base/app/server/inits"
	"core-api-base/app/server/jwt"
	"core-api-base/app/server/password"
	"core-api-base/app/server/repository"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd(), cfg.System.LogLevel)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")

	if cfg.Cors.Insecure() {
		l.Warn("CORS allows credentials from any origin")
	}

	// 密码哈希
	hasher := password.New(cfg.Security.BcryptCost)

	// 初始化数据库连接
	db, err := inits.DB(cfg.Database, cfg.Seed, hasher, l)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	// 初始化 redis 连接，可选
	rdb, err := inits.Redis(cfg.Redis.ConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}
	if rdb == nil {
		l.Info("redis not configured, user cache disabled")
	}

	// 初始化 JWT
	j, err := jwt.New(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	// 健康检查
	hr := health.NewRegistry(cfg.Database.CommandTimeout())
	hr.Register("config", health.Config(cfg, l), "config")
	hr.Register("database", health.Database(db), "database", "ready")
	if rdb != nil {
		hr.Register("redis", health.Redis(rdb), "cache", "ready")
	}

	// 准备 handler app
	users := repository.NewUsers(db, rdb, l, cfg.Database.CommandTimeout())
	handlerApp := handlers.NewApp(l, users, j, hasher, hr)

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("URI", v.URI),
				zap.String("method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Cors.AllowedOrigins,
		AllowMethods:     cfg.Cors.AllowedMethods,
		AllowHeaders:     cfg.Cors.AllowedHeaders,
		ExposeHeaders:    cfg.Cors.ExposedHeaders,
		AllowCredentials: cfg.Cors.AllowCredentials,
		MaxAge:           cfg.Cors.MaxAge,
	}))

	// 绑定 echo 服务
	handlerApp.RegisterRoutes(e)

	// 添加 API 文档
	if !cfg.System.IsProd() {
		if specJSON, err := apidocs.Spec(context.Background()); err != nil {
			l.Error("error initializing api docs", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc("/", specJSON))
		}
	}

	// 启动 echo 服务
	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
