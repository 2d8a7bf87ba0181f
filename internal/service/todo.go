package service

import (
	"context"
	"errors"

	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/deppfellow/todo-api/internal/model/todo"
	"github.com/rs/zerolog"
)

// TodoStore is the persistence contract TodoService depends on.
// repository.TodoRepository and repository.MemoryTodoRepository satisfy it.
type TodoStore interface {
	ListTodos(ctx context.Context) ([]todo.Todo, error)
	GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error)
	CreateTodo(ctx context.Context, fields todo.Fields) (*todo.Todo, error)
	ReplaceTodo(ctx context.Context, id int64, fields todo.Fields) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id int64, patch todo.Patch) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

// ErrTodoNotFound is the 404 returned for any operation on an absent id.
var ErrTodoNotFound = errs.NewNotFoundError("Todo not found", true, nil).
	WithPayload(map[string]string{"error": "Todo not found"})

type TodoService struct {
	store TodoStore
}

func NewTodoService(store TodoStore) *TodoService {
	return &TodoService{store: store}
}

func (s *TodoService) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	todos, err := s.store.ListTodos(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list todos")
		return nil, err
	}
	return todos, nil
}

func (s *TodoService) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	item, err := s.store.GetTodoByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, err, "get", id)
	}
	return item, nil
}

// EnsureTodoExists returns ErrTodoNotFound when id is absent. Handlers run it
// before body validation so a missing todo wins over a bad payload.
func (s *TodoService) EnsureTodoExists(ctx context.Context, id int64) error {
	_, err := s.GetTodo(ctx, id)
	return err
}

func (s *TodoService) CreateTodo(ctx context.Context, fields todo.Fields) (*todo.Todo, error) {
	item, err := s.store.CreateTodo(ctx, fields)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create todo")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "todo_created").
		Int64("todo_id", item.ID).
		Msg("todo created")

	return item, nil
}

func (s *TodoService) ReplaceTodo(ctx context.Context, id int64, fields todo.Fields) (*todo.Todo, error) {
	item, err := s.store.ReplaceTodo(ctx, id, fields)
	if err != nil {
		return nil, s.storeError(ctx, err, "replace", id)
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "todo_replaced").
		Int64("todo_id", item.ID).
		Msg("todo replaced")

	return item, nil
}

func (s *TodoService) UpdateTodo(ctx context.Context, id int64, patch todo.Patch) (*todo.Todo, error) {
	item, err := s.store.UpdateTodo(ctx, id, patch)
	if err != nil {
		return nil, s.storeError(ctx, err, "update", id)
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "todo_updated").
		Int64("todo_id", item.ID).
		Msg("todo updated")

	return item, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return s.storeError(ctx, err, "delete", id)
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "todo_deleted").
		Int64("todo_id", id).
		Msg("todo deleted")

	return nil
}

// storeError maps ErrNotFound to the API 404. Anything else is a storage
// fault and is left for the global error handler.
func (s *TodoService) storeError(ctx context.Context, err error, op string, id int64) error {
	if errors.Is(err, todo.ErrNotFound) {
		return ErrTodoNotFound
	}

	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("operation", op).
		Int64("todo_id", id).
		Msg("todo store failure")

	return err
}
