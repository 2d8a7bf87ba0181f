package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/todo-api/internal/model/todo"
)

// MemoryTodoRepository is an in-process todo store with the same ordering,
// id and timestamp guarantees as TodoRepository. Ids are never reused.
type MemoryTodoRepository struct {
	mu     sync.RWMutex
	todos  map[int64]todo.Todo
	nextID int64
	now    func() time.Time
	last   time.Time
}

// MemoryOption configures a MemoryTodoRepository.
type MemoryOption func(*MemoryTodoRepository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryTodoRepository) {
		r.now = now
	}
}

func NewMemoryTodoRepository(opts ...MemoryOption) *MemoryTodoRepository {
	r := &MemoryTodoRepository{
		todos:  make(map[int64]todo.Todo),
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// tick returns a timestamp strictly after every timestamp handed out so far.
// Callers must hold mu.
func (r *MemoryTodoRepository) tick() time.Time {
	t := r.now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

func (r *MemoryTodoRepository) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]todo.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b todo.Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *MemoryTodoRepository) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, todo.ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTodoRepository) CreateTodo(ctx context.Context, fields todo.Fields) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.tick()
	t := todo.Todo{
		ID:        r.nextID,
		Title:     fields.Title,
		Completed: fields.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.todos[t.ID] = t
	return &t, nil
}

func (r *MemoryTodoRepository) ReplaceTodo(ctx context.Context, id int64, fields todo.Fields) (*todo.Todo, error) {
	return r.modify(ctx, id, func(t todo.Todo) todo.Todo {
		t.Title = fields.Title
		t.Completed = fields.Completed
		return t
	})
}

func (r *MemoryTodoRepository) UpdateTodo(ctx context.Context, id int64, patch todo.Patch) (*todo.Todo, error) {
	return r.modify(ctx, id, patch.Apply)
}

func (r *MemoryTodoRepository) DeleteTodo(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return todo.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepository) modify(ctx context.Context, id int64, fn func(todo.Todo) todo.Todo) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, todo.ErrNotFound
	}

	t = fn(t)
	t.UpdatedAt = r.tick()
	r.todos[id] = t
	return &t, nil
}
