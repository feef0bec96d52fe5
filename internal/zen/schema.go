package zen

import (
	"fmt"
	"sort"
)

// requiredSchema lists the tables and columns every write path touches. The
// Zen schema is not under this tool's control, so the preflight names exactly
// what is missing instead of failing on the first INSERT.
var requiredSchema = map[string][]string{
	"zen_workspaces": {
		"uuid", "name", "container_id", "position", "created_at", "updated_at",
		"icon", "theme_type", "theme_colors", "theme_opacity",
	},
	"zen_workspaces_changes": {"uuid", "timestamp"},
	"zen_pins": {
		"uuid", "title", "url", "container_id", "workspace_uuid", "position",
		"is_essential", "is_group", "folder_parent_uuid", "created_at", "updated_at",
	},
	"zen_pins_changes": {"uuid", "timestamp"},
	"moz_places":       {"url", "title", "rev_host", "visit_count", "frecency", "last_visit_date", "guid", "url_hash"},
	"moz_bookmarks":    {"type", "fk", "parent", "position", "title", "dateAdded", "lastModified", "guid"},
}

// VerifySchema checks that the open database carries every table and column
// the importer writes. Returns nil when the schema is usable.
func (s *Store) VerifySchema() error {
	var missing []string
	for table, cols := range requiredSchema {
		have, err := s.tableColumns(table)
		if err != nil {
			return err
		}
		if len(have) == 0 {
			missing = append(missing, table)
			continue
		}
		for _, col := range cols {
			if _, ok := have[col]; !ok {
				missing = append(missing, table+"."+col)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("zen: schema check failed, missing %v (is this a Zen profile?)", missing)
	}
	return nil
}

// AnalyzeSchema returns every user table with its column list, for the review
// surface and for debugging against unknown Zen versions.
func (s *Store) AnalyzeSchema() (map[string][]string, error) {
	rows, err := s.conn.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("zen: list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("zen: scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("zen: read tables: %w", err)
	}

	out := make(map[string][]string, len(tables))
	for _, table := range tables {
		cols, err := s.tableColumns(table)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(cols))
		for c := range cols {
			names = append(names, c)
		}
		sort.Strings(names)
		out[table] = names
	}
	return out, nil
}

func (s *Store) tableColumns(table string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("zen: table_info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("zen: scan table_info %s: %w", table, err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}
