package config

import (
	"strings"
	"time"
)

type Config struct {
	// 基础配置
	Mode string `mapstructure:"mode"`

	// 与 Server 通信配置
	ServerEndpoint string        `mapstructure:"server_endpoint" validate:"required,url"`
	Tag            string        `mapstructure:"tag" validate:"required"`      // 探测的健康检查标签
	Interval       time.Duration `mapstructure:"interval" validate:"min=1s"`   // 探测间隔
	Timeout        time.Duration `mapstructure:"timeout" validate:"min=1ms"`   // 单次请求超时
}

func (c *Config) IsProd() bool {
	return strings.HasPrefix(strings.ToLower(c.Mode), "p")
}
