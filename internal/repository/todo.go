package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/todo-api/internal/model/todo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

// DBTX is the subset of pgxpool.Pool (and pgx.Tx) the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TodoRepository persists todos in the PostgreSQL "todos" table.
type TodoRepository struct {
	db DBTX
}

func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, title, completed, created_at, updated_at`

// nextUpdatedAt keeps updated_at strictly increasing even when two writes
// land inside the same clock tick.
const nextUpdatedAt = `GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')`

func (r *TodoRepository) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list todos")
	}

	todos, err := pgx.CollectRows(rows, pgx.RowToStructByName[todo.Todo])
	if err != nil {
		return nil, pkgerrors.Wrap(err, "collect todos")
	}
	return todos, nil
}

func (r *TodoRepository) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "get todo %d", id)
	}
	return collectOne(rows, "get", id)
}

func (r *TodoRepository) CreateTodo(ctx context.Context, fields todo.Fields) (*todo.Todo, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO todos (title, completed)
		VALUES ($1, $2)
		RETURNING `+todoColumns+`
	`, fields.Title, fields.Completed)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "insert todo")
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todo.Todo])
	if err != nil {
		return nil, pkgerrors.Wrap(err, "insert todo")
	}
	return &item, nil
}

func (r *TodoRepository) ReplaceTodo(ctx context.Context, id int64, fields todo.Fields) (*todo.Todo, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE todos
		SET title = $2,
			completed = $3,
			updated_at = `+nextUpdatedAt+`
		WHERE id = $1
		RETURNING `+todoColumns+`
	`, id, fields.Title, fields.Completed)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "replace todo %d", id)
	}
	return collectOne(rows, "replace", id)
}

// UpdateTodo applies a partial update. Nil patch fields keep the stored
// value; updated_at is refreshed even when the patch is empty.
func (r *TodoRepository) UpdateTodo(ctx context.Context, id int64, patch todo.Patch) (*todo.Todo, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE todos
		SET title = COALESCE($2::varchar, title),
			completed = COALESCE($3::boolean, completed),
			updated_at = `+nextUpdatedAt+`
		WHERE id = $1
		RETURNING `+todoColumns+`
	`, id, patch.Title, patch.Completed)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "update todo %d", id)
	}
	return collectOne(rows, "update", id)
}

func (r *TodoRepository) DeleteTodo(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return pkgerrors.Wrapf(err, "delete todo %d", id)
	}
	if tag.RowsAffected() == 0 {
		return todo.ErrNotFound
	}
	return nil
}

func collectOne(rows pgx.Rows, op string, id int64) (*todo.Todo, error) {
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todo.Todo])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "%s todo %d", op, id)
	}
	return &item, nil
}
