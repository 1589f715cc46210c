package inits

import (
	"core-api-base/app/probe/config"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"time"
)

// Config 从 PROBE_ 前缀的环境变量读取配置
func Config() (*config.Config, error) {
	v := viper.New()
	v.SetDefault("mode", "development")
	v.SetDefault("server_endpoint", "")
	v.SetDefault("tag", "ready")
	v.SetDefault("interval", time.Minute) // 默认每分钟一次
	v.SetDefault("timeout", 10*time.Second)

	// server_endpoint -> PROBE_SERVER_ENDPOINT
	v.SetEnvPrefix("probe")
	v.AutomaticEnv()

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
