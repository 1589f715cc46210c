package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"strings"
	"time"
)

type Config struct {
	System   System   `mapstructure:"system"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	JWT      JWT      `mapstructure:"jwt"`
	Cors     Cors     `mapstructure:"cors"`
	Security Security `mapstructure:"security"`
	Seed     Seed     `mapstructure:"seed"`
}

type System struct {
	Mode     string `mapstructure:"mode"`      // 运行模式，以 p 开头视为生产环境
	Listen   string `mapstructure:"listen"`    // 监听地址
	LogLevel string `mapstructure:"log_level"` // 日志等级，留空使用模式默认值
}

func (s System) IsProd() bool {
	return strings.HasPrefix(strings.ToLower(s.Mode), "p")
}

type Database struct {
	Driver                string `mapstructure:"driver" validate:"oneof=postgres sqlite"`            // 数据库驱动
	ConnectionString      string `mapstructure:"connection_string" validate:"required,min=10"`       // 数据库连接字符串
	CommandTimeoutSeconds int    `mapstructure:"command_timeout_seconds" validate:"min=1,max=300"`   // 单次查询超时
	AutoMigrate           bool   `mapstructure:"auto_migrate"`                                       // 启动时是否自动迁移
	LogLevel              string `mapstructure:"log_level" validate:"oneof=silent error warn info"` // gorm 日志等级
}

func (d Database) CommandTimeout() time.Duration {
	return time.Duration(d.CommandTimeoutSeconds) * time.Second
}

type Redis struct {
	ConnectionString string `mapstructure:"connection_string"` // Redis 连接字符串，留空则不启用缓存
}

type JWT struct {
	SecretKey     string `mapstructure:"secret_key" validate:"required,min=32"` // 签名密钥，更新会导致旧有会话失效
	Issuer        string `mapstructure:"issuer" validate:"required,url"`
	Audience      string `mapstructure:"audience" validate:"required,url"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes" validate:"min=1"`
}

func (j JWT) Expiry() time.Duration {
	return time.Duration(j.ExpiryMinutes) * time.Minute
}

type Cors struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins" validate:"min=1,dive,required"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

// Insecure 通配来源同时允许凭据
func (c Cors) Insecure() bool {
	if !c.AllowCredentials {
		return false
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

type Security struct {
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

type Seed struct {
	Enabled       bool   `mapstructure:"enabled"`
	AdminUsername string `mapstructure:"admin_username" validate:"required_if=Enabled true,max=50"`
	AdminEmail    string `mapstructure:"admin_email" validate:"required_if=Enabled true,omitempty,email,max=100"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_if=Enabled true"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验全部配置，返回包含每一项违规的错误
func (c *Config) Validate() error {
	problems := c.ValidationErrors()
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}

// ValidationErrors 以可读形式列出所有违规项，用于启动检查和健康检查
func (c *Config) ValidationErrors() []string {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return problems
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
