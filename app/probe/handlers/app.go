package handlers

import (
	"core-api-base/app/probe/config"
	"go.uber.org/zap"
	"net/http"
	"sync"
	"time"
)

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	client *http.Client

	lastStatus string
	ticker     *time.Ticker
	stopChan   chan struct{}
	doneChan   chan struct{}
	lock       sync.Mutex
}

func NewApp(cfg *config.Config, l *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		l:      l,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (a *App) Start() {
	a.ticker = time.NewTicker(a.cfg.Interval)
	a.stopChan = make(chan struct{})
	a.doneChan = make(chan struct{})
	go a.loop()
}

func (a *App) loop() {
	defer close(a.doneChan)

	// 启动时立即探测一次
	a.probe()

	for {
		select {
		case <-a.ticker.C:
			a.l.Debug("probe loop")
			a.probe()
		case <-a.stopChan:
			a.l.Debug("stop probe loop")
			return
		}
	}
}

// Stop 停止循环并等待当前一轮结束
func (a *App) Stop() {
	a.ticker.Stop()
	close(a.stopChan)
	<-a.doneChan
}
