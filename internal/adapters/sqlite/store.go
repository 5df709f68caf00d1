// Package sqlite persists displayed texts, and their history, in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry is one saved text.
type Entry struct {
	Text    string
	SavedAt time.Time
}

// Store implements ports.TextStore. Every save is also appended to a
// per-key history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.TextStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	// Closing m would close db as well.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveText upserts the text and appends it to the history.
func (s *Store) SaveText(ctx context.Context, key, text string) error {
	now := s.now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO texts (key, text, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
			key, text, now); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO text_history (key, text, saved_at) VALUES (?, ?, ?)`, key, text, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save text: %w", err)
	}
	return nil
}

// LoadText returns the latest text saved under key.
func (s *Store) LoadText(ctx context.Context, key string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM texts WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrTextNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load text: %w", err)
	}
	return text, nil
}

// DeleteText removes the current text. The history is kept.
func (s *Store) DeleteText(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM texts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete text: %w", err)
	}
	return nil
}

// History returns up to limit saved texts for key, newest first.
func (s *Store) History(ctx context.Context, key string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, saved_at FROM text_history WHERE key = ? ORDER BY id DESC LIMIT ?`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Text, &e.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
