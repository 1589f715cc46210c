package inits

import (
	"core-api-base/app/server/config"
	"core-api-base/app/server/constants"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"os"
	"strings"
)

// 所有配置项都需要有默认值， viper 才会在 Unmarshal 时读取对应的环境变量
var defaults = map[string]any{
	"system.mode":      "development",
	"system.listen":    ":1323", // 默认监听地址
	"system.log_level": "",

	"database.driver":                  "postgres",
	"database.connection_string":       "",
	"database.command_timeout_seconds": 30,
	"database.auto_migrate":            true,
	"database.log_level":               "warn",

	"redis.connection_string": "",

	"jwt.secret_key":     "",
	"jwt.issuer":         "",
	"jwt.audience":       "",
	"jwt.expiry_minutes": constants.DefaultTokenExpiryMinutes,

	"cors.allowed_origins":    []string{"*"},
	"cors.allowed_methods":    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers":    []string{"*"},
	"cors.exposed_headers":    []string{},
	"cors.allow_credentials":  false,
	"cors.max_age":            3600,
	"security.bcrypt_cost":    constants.DefaultBcryptCost,
	"seed.enabled":            false,
	"seed.admin_username":     "admin",
	"seed.admin_email":        "admin@localhost.localdomain",
	"seed.admin_password":     "",
}

// Config 按 默认值 < 配置文件 < .env < 环境变量 的顺序加载配置，并立即校验
func Config() (*config.Config, error) {
	// .env 文件只补充缺失的环境变量，不覆盖已有的
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	// 配置文件可选
	if cfgFile, exist := os.LookupEnv("CONFIG_FILE"); exist {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// jwt.secret_key -> JWT_SECRET_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 启动时立即校验，缺失或无效的配置直接中止启动
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
