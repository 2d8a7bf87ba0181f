package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func testServer() *server.Server {
	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	logger := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &logger}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"007", 7, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parsePositiveInt(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPositiveIntParam(t *testing.T) {
	e := echo.New()
	e.GET("/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	}, PositiveIntParam("id"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/12", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "12" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/x", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{name: "generated", incoming: "", reuse: false},
		{name: "reused", incoming: "req-123", reuse: true},
		{name: "too long", incoming: strings.Repeat("a", 200), reuse: false},
		{name: "control chars", incoming: "bad\tid", reuse: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != rec.Body.String() {
				t.Fatalf("header %q, context %q", got, rec.Body.String())
			}
			if (got == tt.incoming) != tt.reuse {
				t.Fatalf("reuse=%v, got %q", tt.reuse, got)
			}
		})
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(testServer())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "payload body",
			err:        errs.NewNotFoundError("Todo not found", true, nil).WithPayload(map[string]string{"error": "Todo not found"}),
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"error": "Todo not found"},
		},
		{
			name:       "route not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"code": "NOT_FOUND", "message": "Route not found"},
		},
		{
			name:       "method not allowed",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   map[string]any{"code": "METHOD_NOT_ALLOWED"},
		},
		{
			name:       "storage fault",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"code": "INTERNAL_SERVER_ERROR", "message": "Internal Server Error"},
		},
		{
			name:       "check violation",
			err:        &pgconn.PgError{Code: "23514", Severity: "ERROR", TableName: "todos", ConstraintName: "todos_title_check"},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"code": "TODO_INVALID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for k, v := range tt.wantBody {
				if body[k] != v {
					t.Fatalf("%s: got %v, want %v (body %s)", k, body[k], v, rec.Body.String())
				}
			}
		})
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	s := testServer()
	s.Config.RateLimit.Enabled = false

	e := echo.New()
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, rec.Code)
		}
	}
}

func TestContextEnhancer_StoresLogger(t *testing.T) {
	var buf bytes.Buffer
	s := testServer()
	logger := zerolog.New(&buf)
	s.Logger = &logger

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/items", func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo context")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from request context")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", buf.String())
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if entry["request_id"] != "req-42" || entry["path"] != "/items" {
			t.Fatalf("missing request fields: %s", line)
		}
	}
}
