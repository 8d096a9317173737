package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sqlx.DB
}

func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL for better concurrency; foreign keys on so deck deletes cascade to
	// cards. Both go in the DSN because foreign_keys is a per-connection
	// setting and the pool opens connections lazily.
	dsn := dbPath + "?_journal_mode=WAL&_foreign_keys=on"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool. SQLite allows a single writer, so keep
	// the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
