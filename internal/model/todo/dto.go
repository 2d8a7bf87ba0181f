package todo

import (
	"strings"

	"github.com/deppfellow/todo-api/internal/validation"
)

// Request payloads bound by the handler pipeline.
//
// Body fields are validation.Optional so an absent key, an explicit null and
// a zero value are three different things; null is always rejected.
// Titles are trimmed before validation and stored trimmed. Unknown JSON
// keys are ignored by the binder.

// ------------------------------------------------------------

// ListTodosPayload has no inputs; listing is always newest first.
type ListTodosPayload struct{}

func (p *ListTodosPayload) Validate() error {
	return nil
}

// ------------------------------------------------------------

// CreateTodoPayload is the body of POST /api/create_todo/.
type CreateTodoPayload struct {
	Title     validation.Optional[string] `json:"title" validate:"required,notblank,nonul,max=200"`
	Completed validation.Optional[bool]   `json:"completed"`
}

func (p *CreateTodoPayload) Validate() error {
	p.Title = trimmed(p.Title)
	return validation.Struct(p)
}

// Fields returns the validated fields; completed defaults to false.
func (p *CreateTodoPayload) Fields() Fields {
	return fullFields(p.Title, p.Completed)
}

// ------------------------------------------------------------

// GetTodoPayload identifies a single todo by path id.
type GetTodoPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *GetTodoPayload) Validate() error {
	return nil
}

func (p *GetTodoPayload) TodoID() int64 {
	return p.ID
}

// ------------------------------------------------------------

// ReplaceTodoPayload is the body of PUT /api/update_todo/{id}/.
//
// It carries the full representation: title is required and an omitted
// completed resets the todo to not completed, exactly like create.
type ReplaceTodoPayload struct {
	ID        int64                       `param:"id" json:"-"`
	Title     validation.Optional[string] `json:"title" validate:"required,notblank,nonul,max=200"`
	Completed validation.Optional[bool]   `json:"completed"`
}

func (p *ReplaceTodoPayload) Validate() error {
	p.Title = trimmed(p.Title)
	return validation.Struct(p)
}

func (p *ReplaceTodoPayload) TodoID() int64 {
	return p.ID
}

func (p *ReplaceTodoPayload) Fields() Fields {
	return fullFields(p.Title, p.Completed)
}

// ------------------------------------------------------------

// UpdateTodoPayload is the body of PATCH /api/partial_update_todo/{id}/.
// Every field is optional; only supplied fields are validated and applied.
type UpdateTodoPayload struct {
	ID        int64                       `param:"id" json:"-"`
	Title     validation.Optional[string] `json:"title" validate:"omitempty,notblank,nonul,max=200"`
	Completed validation.Optional[bool]   `json:"completed"`
}

func (p *UpdateTodoPayload) Validate() error {
	p.Title = trimmed(p.Title)
	return validation.Struct(p)
}

func (p *UpdateTodoPayload) TodoID() int64 {
	return p.ID
}

func (p *UpdateTodoPayload) Patch() Patch {
	return Patch{Title: p.Title.Ptr(), Completed: p.Completed.Ptr()}
}

// ------------------------------------------------------------

// DeleteTodoPayload identifies the todo removed by DELETE /api/delete_todo/{id}/.
type DeleteTodoPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *DeleteTodoPayload) Validate() error {
	return nil
}

func (p *DeleteTodoPayload) TodoID() int64 {
	return p.ID
}

// ------------------------------------------------------------

func trimmed(s validation.Optional[string]) validation.Optional[string] {
	if s.Present() {
		s.Value = strings.TrimSpace(s.Value)
	}
	return s
}

// fullFields relies on Optional zero values: absent completed is false.
func fullFields(title validation.Optional[string], completed validation.Optional[bool]) Fields {
	return Fields{Title: title.Value, Completed: completed.Value}
}
