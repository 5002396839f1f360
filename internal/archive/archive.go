// Package archive persists generated reports and the prompts that
// produced them, so completed days can be reviewed after the fact.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one archived generation outcome.
type Entry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"` // ISO date the report covers
	Summary   string    `json:"summary"`
	Report    string    `json:"report"` // generated markdown
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// Store implements the archive using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) the archive database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create archive directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		summary TEXT NOT NULL,
		report TEXT NOT NULL,
		prompt TEXT,
		model TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(date);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save appends a new archive entry and returns its ID.
func (s *Store) Save(ctx context.Context, e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reports (date, summary, report, prompt, model, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.Date, e.Summary, e.Report, e.Prompt, e.Model, createdAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return res.LastInsertId()
}

// Latest returns the most recently archived entry, or false when the
// archive is empty.
func (s *Store) Latest(ctx context.Context) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, date, summary, report, prompt, model, created_at FROM reports ORDER BY id DESC LIMIT 1")
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// ByDate returns all entries for an ISO date, oldest first.
func (s *Store) ByDate(ctx context.Context, date string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, summary, report, prompt, model, created_at FROM reports WHERE date = ? ORDER BY id",
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var createdUnix int64
	if err := row.Scan(&e.ID, &e.Date, &e.Summary, &e.Report, &e.Prompt, &e.Model, &createdUnix); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(createdUnix, 0)
	return e, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
