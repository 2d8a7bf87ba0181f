package handler

import (
	"github.com/deppfellow/todo-api/internal/model/todo"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/deppfellow/todo-api/internal/service"
	"github.com/labstack/echo/v4"
)

// TodoHandler serves the six todo CRUD endpoints.
type TodoHandler struct {
	Handler
	todoService *service.TodoService
}

func NewTodoHandler(s *server.Server, todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{
		Handler:     NewHandler(s),
		todoService: todoService,
	}
}

func (h *TodoHandler) ListTodos(c echo.Context, _ *todo.ListTodosPayload) ([]todo.Todo, error) {
	return h.todoService.ListTodos(c.Request().Context())
}

func (h *TodoHandler) CreateTodo(c echo.Context, payload *todo.CreateTodoPayload) (*todo.Todo, error) {
	return h.todoService.CreateTodo(c.Request().Context(), payload.Fields())
}

func (h *TodoHandler) GetTodo(c echo.Context, payload *todo.GetTodoPayload) (*todo.Todo, error) {
	return h.todoService.GetTodo(c.Request().Context(), payload.ID)
}

func (h *TodoHandler) ReplaceTodo(c echo.Context, payload *todo.ReplaceTodoPayload) (*todo.Todo, error) {
	return h.todoService.ReplaceTodo(c.Request().Context(), payload.ID, payload.Fields())
}

func (h *TodoHandler) UpdateTodo(c echo.Context, payload *todo.UpdateTodoPayload) (*todo.Todo, error) {
	return h.todoService.UpdateTodo(c.Request().Context(), payload.ID, payload.Patch())
}

func (h *TodoHandler) DeleteTodo(c echo.Context, payload *todo.DeleteTodoPayload) error {
	return h.todoService.DeleteTodo(c.Request().Context(), payload.ID)
}

// Prechecks for the write endpoints: a missing todo is reported before
// the body is validated.

func (h *TodoHandler) ReplaceTargetExists(c echo.Context, payload *todo.ReplaceTodoPayload) error {
	return h.todoService.EnsureTodoExists(c.Request().Context(), payload.ID)
}

func (h *TodoHandler) UpdateTargetExists(c echo.Context, payload *todo.UpdateTodoPayload) error {
	return h.todoService.EnsureTodoExists(c.Request().Context(), payload.ID)
}
