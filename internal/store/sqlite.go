package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps records in a single key/value table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and creates if needed) the database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps writes serialized without SQLITE_BUSY
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return data, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, key string, data []byte) error {
	query := `
	INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := b.db.ExecContext(ctx, query, key, data, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
