// Package zen writes the reconstructed sidebar into a Zen browser profile:
// zen_workspaces / zen_pins rows for the pinned projection, moz_places /
// moz_bookmarks rows for the independent bookmark backup, plus the profile
// files around them (profiles.ini, prefs.js, containers.json). All imports run
// through a migration ledger table so re-runs, resets and the consolidation
// pass can find what a previous run created.
package zen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/arczen/internal/apperr"
)

// ledgerSchemaSQL is the one table this tool adds to places.sqlite. It is the
// sourceId → targetId indirection for everything written during an import:
// duplicate detection, reset and consolidation all key off it.
const ledgerSchemaSQL = `
CREATE TABLE IF NOT EXISTS arczen_migration (
	kind           TEXT NOT NULL,
	source_id      TEXT NOT NULL,
	target_id      TEXT NOT NULL,
	workspace_uuid TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	PRIMARY KEY (kind, source_id)
);
`

// Ledger entity kinds.
const (
	kindWorkspace      = "workspace"
	kindFolder         = "folder"
	kindPin            = "pin"
	kindBookmark       = "bookmark"
	kindBookmarkFolder = "bookmark-folder"
)

// Store wraps a places.sqlite connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens an existing places.sqlite and applies the ledger schema. A
// database held by a running Zen instance is reported as
// apperr.ErrStoreLocked; the caller must close the browser first.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("zen: %w: places db at %s", apperr.ErrNotFound, path)
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("zen: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("zen: ping: %w", err)
	}
	// Probe for a write lock up front so the failure mode is a clear error
	// instead of a mid-import timeout.
	if _, err := conn.Exec(`BEGIN IMMEDIATE; ROLLBACK`); err != nil {
		conn.Close()
		if strings.Contains(err.Error(), "database is locked") {
			return nil, fmt.Errorf("zen: %w: close the Zen browser and retry", apperr.ErrStoreLocked)
		}
		return nil, fmt.Errorf("zen: lock probe: %w", err)
	}
	if _, err := conn.Exec(ledgerSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("zen: apply ledger schema: %w", err)
	}
	return &Store{conn: conn, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Backup snapshots the database into dir using VACUUM INTO, which is safe
// against a live WAL, and returns the backup file path.
func (s *Store) Backup(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Dir(s.path)
	}
	dest := filepath.Join(dir, fmt.Sprintf("places-backup-%d.sqlite", time.Now().Unix()))
	if _, err := s.conn.Exec(`VACUUM INTO ?`, dest); err != nil {
		return "", fmt.Errorf("zen: backup to %s: %w", dest, err)
	}
	return dest, nil
}

// ledgerTarget returns the target id a previous run recorded for a source id,
// or "" when the entity has not been imported yet.
func (s *Store) ledgerTarget(kind, sourceID string) (string, error) {
	var target string
	err := s.conn.QueryRow(
		`SELECT target_id FROM arczen_migration WHERE kind = ? AND source_id = ?`,
		kind, sourceID).Scan(&target)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("zen: ledger lookup %s/%s: %w", kind, sourceID, err)
	}
	return target, nil
}

func nowMillis() int64 { return time.Now().UnixMilli() }
func nowMicros() int64 { return time.Now().UnixMicro() }
