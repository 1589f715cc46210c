package handlers

import (
	"context"
	"core-api-base/app/server/types"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"net/http"
	"net/url"
)

const statusUnreachable = "Unreachable"

func (a *App) probe() {
	// 设置并发锁，避免读写冲突
	if !a.lock.TryLock() {
		// 上一轮正在处理，跳过这一轮
		return
	}
	defer a.lock.Unlock()

	status, err := a.check(context.Background())
	if err != nil {
		a.l.Error("failed to probe server health", zap.String("server", a.cfg.ServerEndpoint), zap.Error(err))
		status = statusUnreachable
	}

	if status != a.lastStatus {
		if status == "Healthy" {
			a.l.Info("server health changed", zap.String("from", a.lastStatus), zap.String("to", status))
		} else {
			a.l.Warn("server health changed", zap.String("from", a.lastStatus), zap.String("to", status))
		}
		a.lastStatus = status
	}
}

// check 请求按标签过滤的健康检查，返回汇总状态
func (a *App) check(ctx context.Context) (string, error) {
	// 准备请求的基础信息
	reqUrl, err := url.JoinPath(a.cfg.ServerEndpoint, "/health/tag", url.PathEscape(a.cfg.Tag))
	if err != nil {
		return "", fmt.Errorf("fail to join health request url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return "", fmt.Errorf("fail to prepare health request: %w", err)
	}

	// 发送请求
	res, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fail to send health request: %w", err)
	}
	defer res.Body.Close()

	// 200 与 503 都带有报告
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusServiceUnavailable {
		return "", fmt.Errorf("unexpected status code %d", res.StatusCode)
	}

	// 解析请求体
	var body types.HealthResponse
	if err = json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("fail to decode health response: %w", err)
	}

	for name, entry := range body.Checks {
		if entry.Status != "Healthy" {
			a.l.Debug("check not healthy", zap.String("check", name), zap.String("status", entry.Status))
		}
	}

	return body.Status, nil
}

func (a *App) LastStatus() string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.lastStatus
}
