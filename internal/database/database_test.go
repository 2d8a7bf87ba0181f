package database

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

func testConfig(env string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Primary.Env = env
	cfg.Database.Host = "localhost"
	cfg.Database.User = "todo"
	cfg.Database.Password = "secret"
	cfg.Database.Name = "todos"
	return cfg
}

func TestPoolConfig_AppliesPoolSizing(t *testing.T) {
	cfg := testConfig("production")
	cfg.Database.MaxOpenConns = 12
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = 120
	cfg.Database.ConnMaxIdleTime = 30

	cfg.Observability.Logging.SlowQueryThreshold = 0
	logger := zerolog.Nop().Level(zerolog.InfoLevel)

	pc, err := PoolConfig(cfg, &logger, nil)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}

	if pc.MaxConns != 12 || pc.MinConns != 3 {
		t.Fatalf("got max=%d min=%d", pc.MaxConns, pc.MinConns)
	}
	if pc.MaxConnLifetime != 2*time.Minute || pc.MaxConnIdleTime != 30*time.Second {
		t.Fatalf("got lifetime=%s idle=%s", pc.MaxConnLifetime, pc.MaxConnIdleTime)
	}
	if pc.ConnConfig.Host != "localhost" || pc.ConnConfig.Database != "todos" {
		t.Fatalf("got host=%s db=%s", pc.ConnConfig.Host, pc.ConnConfig.Database)
	}
	if pc.ConnConfig.Tracer != nil {
		t.Fatalf("no tracer expected outside local without New Relic")
	}
}

func TestPoolConfig_ChainsTracers(t *testing.T) {
	cfg := testConfig("local")
	cfg.Observability.Logging.SlowQueryThreshold = 50 * time.Millisecond
	logger := zerolog.New(io.Discard).Level(zerolog.DebugLevel)

	pc, err := PoolConfig(cfg, &logger, nil)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}

	tracers, ok := pc.ConnConfig.Tracer.(multiTracer)
	if !ok || len(tracers) != 2 {
		t.Fatalf("expected SQL log and slow query tracers, got %T", pc.ConnConfig.Tracer)
	}
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tracer := &slowQueryTracer{threshold: 10 * time.Millisecond, logger: &logger}

	fast := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(fast, nil, pgx.TraceQueryEndData{})
	if buf.Len() != 0 {
		t.Fatalf("fast query logged: %s", buf.String())
	}

	slow := context.WithValue(context.Background(), queryStartKey{}, time.Now().Add(-time.Second))
	tracer.TraceQueryEnd(slow, nil, pgx.TraceQueryEndData{})
	if !strings.Contains(buf.String(), "slow query") {
		t.Fatalf("slow query not logged: %q", buf.String())
	}
}

func TestPoolConfig_LocalEnablesSQLLogging(t *testing.T) {
	cfg := testConfig("local")
	cfg.Observability.Logging.SlowQueryThreshold = 0
	logger := zerolog.New(io.Discard).Level(zerolog.DebugLevel)

	pc, err := PoolConfig(cfg, &logger, nil)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}

	tl, ok := pc.ConnConfig.Tracer.(*tracelog.TraceLog)
	if !ok {
		t.Fatalf("expected *tracelog.TraceLog, got %T", pc.ConnConfig.Tracer)
	}
	if tl.LogLevel != tracelog.LogLevelDebug {
		t.Fatalf("got level %v", tl.LogLevel)
	}
}

func TestMigrations_Embedded(t *testing.T) {
	subtree, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}

	data, err := fs.ReadFile(subtree, "001_setup.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	sql := string(data)
	for _, want := range []string{"CREATE TABLE todos", "todos_title_check", "---- create above / drop below ----"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}
