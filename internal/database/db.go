// Package database manages the read-only SQLite catalog connection.
package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the catalog database connection
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the catalog database. The catalog is produced offline by the
// ingestion pipeline; this process only ever reads from it.
func Open(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("catalog database not found at %s: %w", dbPath, err)
	}

	// WAL keeps concurrent readers cheap even though we never write
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the catalog file path
func (db *DB) Path() string {
	return db.path
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns a single row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
