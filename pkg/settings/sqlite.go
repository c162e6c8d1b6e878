package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// sqlite3 driver registration
	_ "github.com/mattn/go-sqlite3"
)

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStorer keeps settings in a SQLite database.
type SQLiteStorer struct {
	db *sql.DB
}

var _ Storer = (*SQLiteStorer)(nil)

// NewSQLiteStorer opens (creating if needed) the database at path and ensures the
// settings table exists. Use ":memory:" for a throwaway database.
func NewSQLiteStorer(path string) (*SQLiteStorer, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSettingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}

	return &SQLiteStorer{db: db}, nil
}

func (s *SQLiteStorer) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("upserting setting: %w", err)
	}

	return nil
}

func (s *SQLiteStorer) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("querying setting: %w", err)
	}

	return []byte(value), nil
}

func (s *SQLiteStorer) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting: %w", err)
	}

	return nil
}

func (s *SQLiteStorer) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning setting key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (s *SQLiteStorer) Close() error {
	return s.db.Close()
}
