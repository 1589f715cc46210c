package main

import (
	"core-api-base/app/probe/handlers"
	"core-api-base/app/probe/inits"
	serverinits "core-api-base/app/server/inits"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := serverinits.Logger(!cfg.IsProd(), "")
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")

	// 开启探测循环
	handlerApp := handlers.NewApp(cfg, l)
	handlerApp.Start()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	handlerApp.Stop()
}
