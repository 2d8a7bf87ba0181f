// Package repository handles all interactions with the database.
//
// It contains the raw SQL for the todos table and an in-memory store
// with the same behavior, abstracting storage away from the service layer.
package repository

import (
	"github.com/deppfellow/todo-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Todo *TodoRepository
}

// NewRepositories builds every repository on top of the server's database pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Todo: NewTodoRepository(s.DB.Pool),
	}
}
