package handlers

import (
	"bytes"
	"context"
	"core-api-base/app/server/config"
	"core-api-base/app/server/health"
	"core-api-base/app/server/jwt"
	"core-api-base/app/server/models"
	"core-api-base/app/server/password"
	"core-api-base/app/server/repository"
	"core-api-base/app/server/types"
	"encoding/json"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type testEnv struct {
	e      *echo.Echo
	users  *repository.Users
	hasher *password.Hasher
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Database: config.Database{Driver: "sqlite", ConnectionString: "file:test.db", CommandTimeoutSeconds: 5, LogLevel: "silent"},
		JWT: config.JWT{
			SecretKey:     "0123456789abcdef0123456789abcdef",
			Issuer:        "https://api.example.com",
			Audience:      "https://app.example.com",
			ExpiryMinutes: 60,
		},
		Cors:     config.Cors{AllowedOrigins: []string{"https://app.example.com"}},
		Security: config.Security{BcryptCost: bcrypt.MinCost},
	}

	j, err := jwt.New(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	require.NoError(t, err)

	users := repository.NewUsers(db, rdb, zap.NewNop(), time.Second)
	hasher := password.New(bcrypt.MinCost)

	hr := health.NewRegistry(time.Second)
	hr.Register("config", health.Config(cfg, zap.NewNop()), "config")
	hr.Register("database", health.Database(db), "database", "ready")
	hr.Register("redis", health.Redis(rdb), "cache", "ready")

	e := echo.New()
	NewApp(zap.NewNop(), users, j, hasher, hr).RegisterRoutes(e)

	return &testEnv{e: e, users: users, hasher: hasher, mr: mr}
}

func (env *testEnv) do(method string, path string, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[types.ErrorMessage](t, rec)
	if body.Message == nil {
		return ""
	}
	return *body.Message
}

func (env *testEnv) register(t *testing.T, username string) types.AuthResponse {
	t.Helper()
	rec := env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": username + "-password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[types.AuthResponse](t, rec)
}

func (env *testEnv) login(t *testing.T, login string, pw string) types.AuthResponse {
	t.Helper()
	rec := env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": login,
		"password": pw,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[types.AuthResponse](t, rec)
}

// seedAdmin 直接写入管理员并登录
func (env *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := env.hasher.Hash("admin-password")
	require.NoError(t, err)

	admin := &models.User{
		Username:     "admin",
		Email:        "admin@x.com",
		DisplayName:  "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	admin.RefreshSecurityStamp()
	require.NoError(t, env.users.Create(context.Background(), admin))

	return env.login(t, "admin", "admin-password").Token
}

func userPath(id uint, suffix string) string {
	return fmt.Sprintf("/users/%d%s", id, suffix)
}
