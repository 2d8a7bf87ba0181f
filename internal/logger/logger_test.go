package logger

import (
	"testing"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q)=%s want %s", in, got, want)
		}
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	if got := tracelog.LogLevel(GetPgxTraceLogLevel(zerolog.DebugLevel)); got != tracelog.LogLevelDebug {
		t.Fatalf("debug maps to %s", got)
	}
	if got := tracelog.LogLevel(GetPgxTraceLogLevel(zerolog.Disabled)); got != tracelog.LogLevelNone {
		t.Fatalf("disabled maps to %s", got)
	}
}

func TestNewLoggerService_WithoutLicense(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())
	if svc.GetApplication() != nil {
		t.Fatalf("expected no New Relic application without a license key")
	}
	svc.Shutdown()
}

func TestNewLoggerWithService_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	l := NewLoggerWithService(cfg, nil)
	if l.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level=%s", l.GetLevel())
	}
}
