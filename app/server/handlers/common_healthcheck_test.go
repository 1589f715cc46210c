package handlers

import (
	"core-api-base/app/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	overall := decode[types.HealthResponse](t, rec)
	assert.Equal(t, "Healthy", overall.Status)
	assert.Empty(t, overall.Checks)

	rec = env.do(http.MethodGet, "/health/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[types.HealthResponse](t, rec)
	require.Contains(t, cfg.Checks, "config")
	assert.Len(t, cfg.Checks, 1)
	jwtSummary := cfg.Checks["config"].Data["jwt_config"].(map[string]any)
	assert.Equal(t, "***CONFIGURED***", jwtSummary["SecretKey"])
	assert.NotContains(t, rec.Body.String(), "0123456789abcdef0123456789abcdef")

	rec = env.do(http.MethodGet, "/health/tag/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[types.HealthResponse](t, rec)
	assert.Equal(t, "ready", ready.FilteredByTag)
	assert.Len(t, ready.Checks, 2)

	rec = env.do(http.MethodGet, "/health/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[types.HealthTagsResponse](t, rec)
	assert.Equal(t, []string{"cache", "config", "database", "ready"}, tags.Tags)
	assert.Equal(t, 3, tags.TotalChecks)
}

func TestHealth_Unhealthy(t *testing.T) {
	env := newTestEnv(t)
	env.mr.Close()

	rec := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Unhealthy", decode[types.HealthResponse](t, rec).Status)

	rec = env.do(http.MethodGet, "/health/tag/cache", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	entry := decode[types.HealthResponse](t, rec).Checks["redis"]
	assert.NotNil(t, entry.Error)

	// 不相关的标签不受影响
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/tag/database", "", nil).Code)
}
