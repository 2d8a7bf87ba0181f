package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newHealthHandler(deps ...dependency) *HealthHandler {
	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	logger := zerolog.Nop()

	h := NewHealthHandler(&server.Server{Config: cfg, Logger: &logger})
	h.dependencies = deps
	return h
}

func runHealth(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
	if err := h.CheckHealth(c); err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func ok(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		deps       []dependency
		wantStatus int
		wantState  string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "all up",
			deps: []dependency{
				{name: "database", check: ok, critical: true},
				{name: "redis", check: ok},
			},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "database down",
			deps: []dependency{
				{name: "database", check: down, critical: true},
				{name: "redis", check: ok},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
		},
		{
			name: "redis down is not fatal",
			deps: []dependency{
				{name: "database", check: ok, critical: true},
				{name: "redis", check: down},
			},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := runHealth(t, newHealthHandler(tt.deps...))

			if status != tt.wantStatus || body["status"] != tt.wantState {
				t.Fatalf("got %d %v", status, body)
			}

			checks, _ := body["checks"].(map[string]any)
			if len(checks) != len(tt.deps) {
				t.Fatalf("got checks %v", checks)
			}
			for _, dep := range tt.deps {
				result, _ := checks[dep.name].(map[string]any)
				if result == nil || result["status"] == nil {
					t.Fatalf("missing result for %s: %v", dep.name, checks)
				}
			}
		})
	}
}

func TestNewHealthHandler_SkipsMissingDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	logger := zerolog.Nop()

	h := NewHealthHandler(&server.Server{Config: cfg, Logger: &logger})
	if len(h.dependencies) != 0 {
		t.Fatalf("expected no dependencies without db/redis, got %d", len(h.dependencies))
	}
}
