// Package history persists a journal of decided input pairs in SQLite.
// The matcher itself stays stateless; the journal is a CLI-layer record
// keyed by the full input pair, useful for auditing batch runs and for
// spotting regressions when a discovered predicate changes.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"skipmatch/internal/logging"
)

// Check is one recorded decision.
type Check struct {
	ID         string
	Left       string
	Right      string
	Equivalent bool
	Window     int
	// Source names what produced the verdict: "matcher" for the built-in
	// core, or the discovered predicate's function name.
	Source    string
	Duration  time.Duration
	CreatedAt time.Time
}

// Stats summarizes the journal.
type Stats struct {
	Total      int
	Equivalent int
}

// Store is the SQLite-backed journal.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.History("journal opened at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id TEXT PRIMARY KEY,
		left TEXT NOT NULL,
		right TEXT NOT NULL,
		verdict INTEGER NOT NULL,
		window INTEGER NOT NULL,
		source TEXT NOT NULL,
		duration_us INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checks_pair ON checks(left, right);
	CREATE INDEX IF NOT EXISTS idx_checks_created ON checks(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Record appends a check to the journal. A missing ID is filled in.
func (s *Store) Record(c Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	verdict := 0
	if c.Equivalent {
		verdict = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO checks (id, left, right, verdict, window, source, duration_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Left, c.Right, verdict, c.Window, c.Source, c.Duration.Microseconds(),
		c.CreatedAt.UnixMicro(),
	)
	if err != nil {
		logging.HistoryError("record failed: %v", err)
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// Recent returns up to limit checks, newest first.
func (s *Store) Recent(limit int) ([]Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, left, right, verdict, window, source, duration_us, created_at
		 FROM checks ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	var out []Check
	for rows.Next() {
		var c Check
		var verdict int
		var durUS, createdUS int64
		if err := rows.Scan(&c.ID, &c.Left, &c.Right, &verdict, &c.Window,
			&c.Source, &durUS, &createdUS); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.Equivalent = verdict == 1
		c.Duration = time.Duration(durUS) * time.Microsecond
		c.CreatedAt = time.UnixMicro(createdUS)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats returns journal totals.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(verdict), 0) FROM checks`)
	if err := row.Scan(&st.Total, &st.Equivalent); err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
