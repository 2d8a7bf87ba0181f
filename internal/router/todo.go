package router

import (
	"net/http"

	"github.com/deppfellow/todo-api/internal/handler"
	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerTodoRoutes mounts the six CRUD endpoints under g.
//
// Routes taking an id only match when it is a positive integer; anything
// else falls through to the "Route not found" 404.
func registerTodoRoutes(g *echo.Group, h *handler.Handlers) {
	todos := h.Todo
	idParam := middleware.PositiveIntParam("id")

	g.GET("/get_todos/", handler.Handle(todos.Handler, todos.ListTodos, http.StatusOK))

	g.POST("/create_todo/", handler.Handle(todos.Handler, todos.CreateTodo, http.StatusCreated))

	g.GET("/get_todo/:id/", handler.Handle(todos.Handler, todos.GetTodo, http.StatusOK), idParam)

	g.PUT("/update_todo/:id/",
		handler.Handle(todos.Handler, todos.ReplaceTodo, http.StatusOK, todos.ReplaceTargetExists),
		idParam,
	)

	g.PATCH("/partial_update_todo/:id/",
		handler.Handle(todos.Handler, todos.UpdateTodo, http.StatusOK, todos.UpdateTargetExists),
		idParam,
	)

	g.DELETE("/delete_todo/:id/", handler.HandleNoContent(todos.Handler, todos.DeleteTodo, http.StatusNoContent), idParam)
}
