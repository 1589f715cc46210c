package handlers

import (
	"core-api-base/app/server/health"
	"core-api-base/app/server/types"
	"core-api-base/app/server/utils"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const tagConfig = "config"

func healthStatusCode(status health.Status) int {
	if status == health.StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func detailed(report health.Report, tag string) *types.HealthResponse {
	checks := make(map[string]types.HealthEntry, len(report.Entries))
	for name, entry := range report.Entries {
		e := types.HealthEntry{
			Status:      string(entry.Status),
			Description: entry.Description,
			Duration:    entry.Duration.String(),
			Data:        entry.Data,
			Tags:        entry.Tags,
		}
		if entry.Err != nil {
			e.Error = utils.P(entry.Err.Error())
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		checks[name] = e
	}

	return &types.HealthResponse{
		Status:        string(report.Status),
		Duration:      report.Duration.String(),
		Timestamp:     time.Now().UTC(),
		FilteredByTag: tag,
		Checks:        checks,
	}
}

func (a *App) HealthCheck(c echo.Context) error {
	report := a.health.Run(c.Request().Context(), nil)
	if report.Status != health.StatusHealthy {
		a.l.Warn("health check failed", zap.String("status", string(report.Status)))
	}

	return c.JSON(healthStatusCode(report.Status), &types.HealthResponse{
		Status:    string(report.Status),
		Duration:  report.Duration.String(),
		Timestamp: time.Now().UTC(),
	})
}

func (a *App) HealthConfig(c echo.Context) error {
	report := a.health.Run(c.Request().Context(), func(check health.Check) bool {
		return check.HasTag(tagConfig)
	})

	return c.JSON(healthStatusCode(report.Status), detailed(report, ""))
}

func (a *App) HealthByTag(c echo.Context, tag string) error {
	report := a.health.Run(c.Request().Context(), func(check health.Check) bool {
		return check.HasTag(tag)
	})

	return c.JSON(healthStatusCode(report.Status), detailed(report, tag))
}

func (a *App) HealthTags(c echo.Context) error {
	return c.JSON(http.StatusOK, &types.HealthTagsResponse{
		Tags:        a.health.Tags(),
		TotalChecks: a.health.Len(),
		Timestamp:   time.Now().UTC(),
	})
}
