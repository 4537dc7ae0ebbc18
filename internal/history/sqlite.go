package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps reads cheap if the host application shares the file.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS history (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "history"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.logger.Debug("sql", "op", "select", "key", key)

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM history WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	s.logger.Debug("sql", "op", "upsert", "key", key, "bytes", len(value))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.logger.Debug("sql", "op", "delete", "key", key)

	_, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE key = ?`, key)
	return err
}
