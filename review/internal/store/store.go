// Package store provides the data access layer for the review service:
// analysis runs, their findings, and the fixes generated for them.
package store

import "database/sql"

// Store wraps the review database.
type Store struct {
	DB *sql.DB
}

// New creates a Store from an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}
