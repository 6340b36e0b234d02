// Package sqlite provides a persistent paper registry backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"paperrag/internal/domain"
	"paperrag/internal/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS papers (
	name       TEXT PRIMARY KEY,
	chunks     INTEGER NOT NULL,
	added_at   INTEGER NOT NULL
)`

// Store is a registry.Registry persisted in a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

var _ registry.Registry = (*Store)(nil)

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Add(ctx context.Context, p domain.Paper) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty paper name", domain.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (name, chunks, added_at) VALUES (?, ?, ?)`,
		p.Name, p.Chunks, p.AddedAt.UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", domain.ErrPaperExists, p.Name)
		}
		return fmt.Errorf("inserting paper: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (domain.Paper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, chunks, added_at FROM papers WHERE name = ?`, name)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Paper{}, fmt.Errorf("%w: paper %s", domain.ErrNotFound, name)
	}
	if err != nil {
		return domain.Paper{}, fmt.Errorf("getting paper: %w", err)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, chunks, added_at FROM papers ORDER BY added_at, name`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var out []domain.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (domain.Paper, error) {
	var p domain.Paper
	var added int64
	if err := sc.Scan(&p.Name, &p.Chunks, &added); err != nil {
		return domain.Paper{}, err
	}
	p.AddedAt = time.Unix(0, added).UTC()
	return p, nil
}
