package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/todo-api/internal/model/todo"
)

func frozenClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestMemoryTodoRepository_CreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	a, err := repo.CreateTodo(ctx, todo.Fields{Title: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateTodo(ctx, todo.Fields{Title: "B", Completed: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("got ids %d, %d", a.ID, b.ID)
	}
	if !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Fatalf("created_at and updated_at should match on create")
	}
	if !b.Completed {
		t.Fatalf("completed not stored")
	}
}

func TestMemoryTodoRepository_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	a, _ := repo.CreateTodo(ctx, todo.Fields{Title: "A"})
	if err := repo.DeleteTodo(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, _ := repo.CreateTodo(ctx, todo.Fields{Title: "B"})

	if b.ID == a.ID {
		t.Fatalf("id %d reused", b.ID)
	}
}

func TestMemoryTodoRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	// A frozen clock forces every timestamp through the monotonic bump.
	repo := NewMemoryTodoRepository(WithClock(frozenClock()))

	for _, title := range []string{"A", "B", "C"} {
		if _, err := repo.CreateTodo(ctx, todo.Fields{Title: title}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var titles []string
	for _, item := range list {
		titles = append(titles, item.Title)
	}
	if len(titles) != 3 || titles[0] != "C" || titles[1] != "B" || titles[2] != "A" {
		t.Fatalf("got order %v", titles)
	}
}

func TestMemoryTodoRepository_ListEmpty(t *testing.T) {
	list, err := NewMemoryTodoRepository().ListTodos(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestMemoryTodoRepository_UpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository(WithClock(frozenClock()))

	created, _ := repo.CreateTodo(ctx, todo.Fields{Title: "A"})

	touched, err := repo.UpdateTodo(ctx, created.ID, todo.Patch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !touched.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at not refreshed by empty patch")
	}
	if !touched.CreatedAt.Equal(created.CreatedAt) || touched.Title != "A" {
		t.Fatalf("empty patch changed fields: %+v", touched)
	}

	done := true
	patched, err := repo.UpdateTodo(ctx, created.ID, todo.Patch{Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !patched.Completed || patched.Title != "A" {
		t.Fatalf("got %+v", patched)
	}
	if !patched.UpdatedAt.After(touched.UpdatedAt) {
		t.Fatalf("updated_at not strictly increasing")
	}
}

func TestMemoryTodoRepository_ReplaceOverwritesFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	created, _ := repo.CreateTodo(ctx, todo.Fields{Title: "A", Completed: true})
	replaced, err := repo.ReplaceTodo(ctx, created.ID, todo.Fields{Title: "X"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Title != "X" || replaced.Completed {
		t.Fatalf("got %+v", replaced)
	}
	if replaced.ID != created.ID || !replaced.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("identity fields changed: %+v", replaced)
	}
}

func TestMemoryTodoRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	if _, err := repo.GetTodoByID(ctx, 99); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("get: got %v", err)
	}
	if _, err := repo.ReplaceTodo(ctx, 99, todo.Fields{Title: "X"}); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("replace: got %v", err)
	}
	if _, err := repo.UpdateTodo(ctx, 99, todo.Patch{}); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("update: got %v", err)
	}
	if err := repo.DeleteTodo(ctx, 99); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("delete: got %v", err)
	}
}

func TestMemoryTodoRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.CreateTodo(ctx, todo.Fields{Title: "T"})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- created.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d ids, want %d", len(seen), n)
	}
}
