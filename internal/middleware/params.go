package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PositiveIntParam only lets a request through when path parameter name is
// a positive decimal integer that fits in int64. Anything else is treated as
// an unmatched route (echo.ErrNotFound), so "/api/get_todo/abc/" is a 404
// before any handler runs.
func PositiveIntParam(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := parsePositiveInt(c.Param(name)); !ok {
				return echo.ErrNotFound
			}
			return next(c)
		}
	}
}

func parsePositiveInt(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
