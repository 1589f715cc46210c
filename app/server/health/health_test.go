package health

import (
	"context"
	"core-api-base/app/server/config"
	"errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"testing"
	"time"
)

func fixed(r Result) CheckFunc {
	return func(ctx context.Context) Result { return r }
}

func TestRegistry_Aggregate(t *testing.T) {
	r := NewRegistry(time.Second)
	r.Register("a", fixed(Healthy("ok", nil)), "config")
	r.Register("b", fixed(Result{Status: StatusDegraded}), "database", "ready")

	report := r.Run(context.Background(), nil)
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Len(t, report.Entries, 2)
	assert.Equal(t, []string{"database", "ready"}, report.Entries["b"].Tags)

	r.Register("c", fixed(Unhealthy("down", errors.New("boom"), nil)), "ready")
	report = r.Run(context.Background(), nil)
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.EqualError(t, report.Entries["c"].Err, "boom")
}

func TestRegistry_Filter(t *testing.T) {
	r := NewRegistry(time.Second)
	r.Register("config", fixed(Healthy("ok", nil)), "config")
	r.Register("database", fixed(Unhealthy("down", nil, nil)), "database", "ready")

	report := r.Run(context.Background(), func(c Check) bool { return c.HasTag("config") })
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Len(t, report.Entries, 1)

	// 没有匹配项时视为健康
	report = r.Run(context.Background(), func(c Check) bool { return c.HasTag("nope") })
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Empty(t, report.Entries)
}

func TestRegistry_Tags(t *testing.T) {
	r := NewRegistry(0)
	r.Register("b", fixed(Healthy("", nil)), "ready", "database")
	r.Register("a", fixed(Healthy("", nil)), "config", "ready")

	assert.Equal(t, []string{"config", "database", "ready"}, r.Tags())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_PanicAndTimeout(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	r.Register("panics", func(ctx context.Context) Result { panic("oops") })
	r.Register("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		return Unhealthy("timed out", ctx.Err(), nil)
	})
	r.Register("empty", func(ctx context.Context) Result { return Result{} })

	report := r.Run(context.Background(), nil)
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Entries["panics"].Status)
	assert.ErrorIs(t, report.Entries["slow"].Err, context.DeadlineExceeded)
	assert.Equal(t, StatusUnhealthy, report.Entries["empty"].Status)
}

func validConfig() *config.Config {
	return &config.Config{
		Database: config.Database{
			Driver:                "sqlite",
			ConnectionString:      "file:core.db",
			CommandTimeoutSeconds: 30,
			LogLevel:              "warn",
		},
		JWT: config.JWT{
			SecretKey:     "0123456789abcdef0123456789abcdef",
			Issuer:        "https://api.example.com",
			Audience:      "https://app.example.com",
			ExpiryMinutes: 60,
		},
		Cors:     config.Cors{AllowedOrigins: []string{"https://app.example.com"}},
		Security: config.Security{BcryptCost: 12},
	}
}

func TestConfigCheck(t *testing.T) {
	cfg := validConfig()
	res := Config(cfg, zap.NewNop())(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, true, res.Data["jwt_valid"])
	assert.Equal(t, true, res.Data["cors_valid"])

	jwtSummary := res.Data["jwt_config"].(map[string]any)
	assert.Equal(t, "***CONFIGURED***", jwtSummary["SecretKey"])
	assert.NotContains(t, jwtSummary, cfg.JWT.SecretKey)
}

func TestConfigCheck_Problems(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.SecretKey = "too-short"
	cfg.Cors.AllowedOrigins = []string{"*"}
	cfg.Cors.AllowCredentials = true

	res := Config(cfg, zap.NewNop())(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, false, res.Data["jwt_valid"])
	assert.Equal(t, false, res.Data["cors_valid"])
	assert.Equal(t, true, res.Data["database_valid"])
	assert.Contains(t, res.Description, "SecretKey too short")
	assert.Contains(t, res.Description, "AllowCredentials=true with AllowedOrigins=*")
}

func TestDatabaseCheck(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	res := Database(db)(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res = Database(db)(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Error(t, res.Err)
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	assert.Equal(t, StatusHealthy, Redis(rdb)(context.Background()).Status)

	mr.Close()
	assert.Equal(t, StatusUnhealthy, Redis(rdb)(context.Background()).Status)
}
