// Package storage provides persistence backends for audit records:
// SQLite for production and an in-memory backend for tests.
package storage
