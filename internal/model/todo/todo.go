// Package todo defines the Todo entity and the request payloads that
// create and modify it.
package todo

import (
	"errors"
	"time"
)

// TitleMaxLength is the maximum title length in characters (runes).
const TitleMaxLength = 200

// ErrNotFound is returned by entity stores when no Todo has the requested id.
var ErrNotFound = errors.New("todo not found")

// Todo is a single todo item.
//
// ID and CreatedAt never change after creation. UpdatedAt is refreshed on
// every successful modification, so CreatedAt <= UpdatedAt always holds.
type Todo struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Fields is a full, validated set of mutable fields (create and replace).
type Fields struct {
	Title     string
	Completed bool
}

// Patch is a validated partial update. Nil fields keep their stored value.
type Patch struct {
	Title     *string
	Completed *bool
}

// Apply returns t with the supplied patch fields applied.
// Timestamps are left to the store.
func (p Patch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
