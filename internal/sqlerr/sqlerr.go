// Package sqlerr handles database driver errors.
//
// It parses SQLSTATE codes reported by PostgreSQL (through pgx) and
// converts them into user-friendly API errors, e.g. a CHECK violation
// on todos.title becomes a 400 with a field error.
package sqlerr
