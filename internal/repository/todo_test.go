package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/deppfellow/todo-api/internal/model/todo"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newTestRepository connects to DB_URL and empties the todos table.
// The schema is expected to be migrated already.
func newTestRepository(t *testing.T) *TodoRepository {
	t.Helper()

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		t.Skip("DB_URL not set; skipping PostgreSQL repository tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE todos`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewTodoRepository(pool)
}

func TestTodoRepository_Lifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.CreateTodo(ctx, todo.Fields{Title: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateTodo(ctx, todo.Fields{Title: "B", Completed: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not increasing: %d, %d", a.ID, b.ID)
	}

	list, err := repo.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	title := "A2"
	patched, err := repo.UpdateTodo(ctx, a.ID, todo.Patch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if patched.Title != "A2" || patched.Completed {
		t.Fatalf("got %+v", patched)
	}
	if !patched.UpdatedAt.After(a.UpdatedAt) {
		t.Fatalf("updated_at not refreshed")
	}

	replaced, err := repo.ReplaceTodo(ctx, b.ID, todo.Fields{Title: "X"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Completed || !replaced.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("got %+v", replaced)
	}

	if err := repo.DeleteTodo(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTodoByID(ctx, a.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTodo(ctx, a.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTodoRepository_ListEmpty(t *testing.T) {
	repo := newTestRepository(t)

	list, err := repo.ListTodos(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no rows, got %d", len(list))
	}
}
