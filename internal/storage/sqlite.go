// Package storage persists the triage audit log in SQLite.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the triage audit log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "triaged.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" errors; the busy timeout
	// makes concurrent access wait briefly instead of failing.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		version, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("migration %s has no numeric version prefix: %w", name, err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// SaveTriage inserts one audit-log row.
func (s *Store) SaveTriage(t Triage) error {
	_, err := s.db.Exec(
		`INSERT INTO triages (id, created_at, source, record_json, results_json, report_status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreatedAt, t.Source, t.RecordJSON, t.ResultsJSON, t.ReportStatus,
	)
	if err != nil {
		return fmt.Errorf("inserting triage: %w", err)
	}
	return nil
}

// GetTriage returns one audit-log row by id.
func (s *Store) GetTriage(id string) (Triage, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, source, record_json, results_json, report_status
		 FROM triages WHERE id = ?`, id,
	)

	var t Triage
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Source, &t.RecordJSON, &t.ResultsJSON, &t.ReportStatus)
	if err == sql.ErrNoRows {
		return Triage{}, ErrNotFound
	}
	if err != nil {
		return Triage{}, fmt.Errorf("scanning triage: %w", err)
	}
	return t, nil
}

// ListTriages returns audit-log rows newest first.
func (s *Store) ListTriages(limit, offset int) ([]Triage, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source, record_json, results_json, report_status
		 FROM triages ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying triages: %w", err)
	}
	defer rows.Close()

	var triages []Triage
	for rows.Next() {
		var t Triage
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.Source, &t.RecordJSON, &t.ResultsJSON, &t.ReportStatus); err != nil {
			return nil, fmt.Errorf("scanning triage row: %w", err)
		}
		triages = append(triages, t)
	}
	return triages, rows.Err()
}
