package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// dependency is a named check plus whether its failure makes the service unhealthy.
type dependency struct {
	name     string
	check    HealthCheck
	critical bool
}

// HealthHandler serves /status for load balancers and uptime monitors.
//
// The database is critical: if it is down the endpoint answers 503. Redis
// is reported but optional, because rate limiting falls back to memory.
type HealthHandler struct {
	Handler
	dependencies []dependency
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{Handler: NewHandler(s)}
	checks := s.Config.Observability.HealthChecks

	if checks.Has("database") && s.DB != nil {
		h.dependencies = append(h.dependencies, dependency{name: "database", check: s.DB.Ping, critical: true})
	}
	if checks.Has("redis") && s.Redis != nil {
		h.dependencies = append(h.dependencies, dependency{
			name:  "redis",
			check: func(ctx context.Context) error { return s.Redis.Ping(ctx).Err() },
		})
	}

	return h
}

// CheckHealth returns 200 when every critical dependency answers and 503
// otherwise. Each check gets HealthChecks.Timeout.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any, len(h.dependencies))
	isHealthy := true

	for _, dep := range h.dependencies {
		result, err := h.runCheck(c.Request().Context(), dep)
		checks[dep.name] = result
		if err == nil {
			logger.Debug().Str("check", dep.name).Msg("health check passed")
			continue
		}

		if dep.critical {
			isHealthy = false
		}

		logger.Error().
			Err(err).
			Str("check", dep.name).
			Bool("critical", dep.critical).
			Msg("health check failed")

		h.recordHealthCheckError(dep.name, err)
	}

	status := http.StatusOK
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
	}

	if err := c.JSON(status, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) runCheck(parent context.Context, dep dependency) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(parent, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := dep.check(ctx)

	result := map[string]any{
		"status":        "healthy",
		"response_time": time.Since(checkStart).String(),
	}
	if err != nil {
		result["status"] = "unhealthy"
		result["error"] = err.Error()
	}
	return result, err
}

func (h *HealthHandler) recordHealthCheckError(check string, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":    check,
		"operation":     "health_check",
		"error_type":    check + "_unhealthy",
		"error_message": err.Error(),
	})
}
