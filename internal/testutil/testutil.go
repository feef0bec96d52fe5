// Package testutil provides shared test helpers: throwaway Zen profiles with
// a places.sqlite carrying the schema subset the importer writes.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// zenSchemaSQL is the subset of a real Zen places.sqlite that the import
// paths touch, including the standard Places roots the bookmark projection
// hangs folders under.
const zenSchemaSQL = `
CREATE TABLE zen_workspaces (
	uuid           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	container_id   INTEGER,
	position       INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL,
	icon           TEXT,
	theme_type     TEXT,
	theme_colors   TEXT,
	theme_opacity  REAL,
	theme_rotation INTEGER,
	theme_texture  REAL
);

CREATE TABLE zen_workspaces_changes (
	uuid      TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL
);

CREATE TABLE zen_pins (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid               TEXT NOT NULL UNIQUE,
	title              TEXT,
	url                TEXT,
	container_id       INTEGER,
	workspace_uuid     TEXT,
	position           INTEGER NOT NULL DEFAULT 0,
	is_essential       INTEGER NOT NULL DEFAULT 0,
	is_group           INTEGER NOT NULL DEFAULT 0,
	folder_parent_uuid TEXT,
	created_at         INTEGER NOT NULL,
	updated_at         INTEGER NOT NULL,
	edited_title       INTEGER NOT NULL DEFAULT 0,
	is_folder_collapsed INTEGER NOT NULL DEFAULT 0,
	folder_icon        TEXT
);

CREATE TABLE zen_pins_changes (
	uuid      TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL
);

CREATE TABLE moz_places (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	url             TEXT,
	title           TEXT,
	rev_host        TEXT,
	visit_count     INTEGER DEFAULT 0,
	frecency        INTEGER DEFAULT -1,
	last_visit_date INTEGER,
	guid            TEXT UNIQUE,
	url_hash        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE moz_bookmarks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	type         INTEGER,
	fk           INTEGER DEFAULT NULL,
	parent       INTEGER,
	position     INTEGER,
	title        TEXT,
	dateAdded    INTEGER,
	lastModified INTEGER,
	guid         TEXT UNIQUE
);

INSERT INTO moz_bookmarks (type, parent, position, title, guid, dateAdded, lastModified)
VALUES (2, 0, 0, '', 'root________', 0, 0);
INSERT INTO moz_bookmarks (type, parent, position, title, guid, dateAdded, lastModified)
VALUES (2, 1, 0, 'unfiled', 'unfiled_____', 0, 0);
`

// PlacesDB creates a temporary places.sqlite with the Zen schema applied and
// returns its path. The file is removed when the test finishes.
func PlacesDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.sqlite")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(zenSchemaSQL); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// ZenProfile creates a temporary profile directory with a schema-initialized
// places.sqlite and a minimal prefs.js, returning the directory.
func ZenProfile(t *testing.T) string {
	t.Helper()
	dir := filepath.Dir(PlacesDB(t))
	prefs := `user_pref("browser.startup.page", 1);` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.js"), []byte(prefs), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// Logger returns a slog.Logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
