// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"strings"

	"github.com/deppfellow/todo-api/internal/handler"
	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// APIPrefix is where the todo routes live.
const APIPrefix = "/api"

// NewRouter builds the Echo instance: global error handler, middleware
// chain, system routes and the todo API.
//
// Middleware order matters:
//   - RequestID first, so every later log line and trace carries it
//   - New Relic before EnhanceTracing and ContextEnhancer (they read the txn)
//   - ContextEnhancer before RequestLogger and the rate limiter (they log)
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// API paths are canonical with a trailing slash; clients may omit it.
	router.Pre(echoMiddleware.AddTrailingSlashWithConfig(echoMiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, APIPrefix+"/")
		},
	}))

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	api := router.Group(APIPrefix)
	registerTodoRoutes(api, h)

	return router
}
