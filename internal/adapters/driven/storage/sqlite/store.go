// Package sqlite is the persistent storage adapter. It backs the
// fetch-path store with a single SQLite database under the coursekit data
// directory, migrated on open.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/coursekit/coursekit-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// Store owns the database connection and hands out typed store views.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and if needed creates) the database at the specified
// data directory. If dataDir is empty, defaults to ~/.coursekit/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coursekit", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "coursekit.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FetchPathStore returns a FetchPathStore interface backed by this store.
func (s *Store) FetchPathStore() driven.FetchPathStore {
	return &fetchPathStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Fetch Path Store ====================

// fetchPathStore implements driven.FetchPathStore.
type fetchPathStore struct {
	store *Store
}

var _ driven.FetchPathStore = (*fetchPathStore)(nil)

// Save records the local path an assignment was fetched to.
func (s *fetchPathStore) Save(ctx context.Context, class, assignment, path string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO fetch_paths (class, assignment, path, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(class, assignment) DO UPDATE SET
			path = excluded.path,
			updated_at = excluded.updated_at
	`, class, assignment, path, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving fetch path: %w", err)
	}
	return nil
}

// Get retrieves the recorded path for an assignment.
func (s *fetchPathStore) Get(ctx context.Context, class, assignment string) (string, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT path FROM fetch_paths WHERE class = ? AND assignment = ?
	`, class, assignment)

	var path string
	if err := row.Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s/%s", domain.ErrNotFound, class, assignment)
		}
		return "", fmt.Errorf("scanning fetch path: %w", err)
	}
	return path, nil
}

// List returns assignment name -> recorded path for a class.
func (s *fetchPathStore) List(ctx context.Context, class string) (map[string]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT assignment, path FROM fetch_paths WHERE class = ?
	`, class)
	if err != nil {
		return nil, fmt.Errorf("listing fetch paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]string)
	for rows.Next() {
		var assignment, path string
		if err := rows.Scan(&assignment, &path); err != nil {
			return nil, fmt.Errorf("scanning fetch path: %w", err)
		}
		paths[assignment] = path
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fetch paths: %w", err)
	}
	return paths, nil
}

// Delete removes the record for an assignment.
func (s *fetchPathStore) Delete(ctx context.Context, class, assignment string) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM fetch_paths WHERE class = ? AND assignment = ?
	`, class, assignment)
	if err != nil {
		return fmt.Errorf("deleting fetch path: %w", err)
	}
	return nil
}
