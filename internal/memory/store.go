package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"shellmind/internal/logging"
)

// ErrEmptyFact is returned when saving a blank fact.
var ErrEmptyFact = errors.New("fact must not be empty")

const schema = `
CREATE TABLE IF NOT EXISTS facts (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Store keeps facts in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the fact database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("memory store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Debug("memory store opened", "path", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Add stores a fact and returns the saved entry.
func (s *Store) Add(ctx context.Context, content string) (Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Entry{}, ErrEmptyFact
	}

	entry := NewEntry(content)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO facts (id, content, created_at) VALUES (?, ?, ?)",
		entry.ID, entry.Content, entry.Timestamp.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save fact: %w", err)
	}
	return entry, nil
}

// Remember stores a fact, discarding the entry.
func (s *Store) Remember(ctx context.Context, fact string) error {
	_, err := s.Add(ctx, fact)
	return err
}

// Search returns facts matching q, oldest first.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]Entry, error) {
	query := "SELECT id, content, created_at FROM facts"
	var args []any
	if q.Query != "" {
		query += " WHERE content LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(q.Query)+"%")
	}
	query += " ORDER BY seq"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		e.Timestamp = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// List returns every fact, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.Search(ctx, SearchQuery{})
}

// Count returns the number of stored facts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
