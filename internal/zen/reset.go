package zen

import (
	"fmt"
	"log/slog"
)

// ResetResult reports what a reset removed.
type ResetResult struct {
	Pins       int `json:"pins"`
	Workspaces int `json:"workspaces"`
	Bookmarks  int `json:"bookmarks"`
}

// Reset removes everything a previous import created, driven entirely by the
// migration ledger so rows the user created themselves are never touched.
// Runs in one transaction and clears the ledger on success.
func (s *Store) Reset(logger *slog.Logger) (*ResetResult, error) {
	res := &ResetResult{}
	tx, err := s.conn.Begin()
	if err != nil {
		return res, fmt.Errorf("zen: begin reset tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`SELECT kind, target_id FROM arczen_migration`)
	if err != nil {
		return res, fmt.Errorf("zen: read ledger: %w", err)
	}
	type entry struct{ kind, target string }
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.kind, &e.target); err != nil {
			rows.Close()
			return res, fmt.Errorf("zen: scan ledger: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("zen: read ledger rows: %w", err)
	}

	for _, e := range entries {
		switch e.kind {
		case kindPin, kindFolder:
			if _, err := tx.Exec(`DELETE FROM zen_pins WHERE uuid = ?`, e.target); err != nil {
				return res, fmt.Errorf("zen: delete pin %s: %w", e.target, err)
			}
			if _, err := tx.Exec(`DELETE FROM zen_pins_changes WHERE uuid = ?`, e.target); err != nil {
				return res, fmt.Errorf("zen: delete pin change %s: %w", e.target, err)
			}
			res.Pins++
		case kindWorkspace:
			if _, err := tx.Exec(`DELETE FROM zen_workspaces WHERE uuid = ?`, e.target); err != nil {
				return res, fmt.Errorf("zen: delete workspace %s: %w", e.target, err)
			}
			if _, err := tx.Exec(`DELETE FROM zen_workspaces_changes WHERE uuid = ?`, e.target); err != nil {
				return res, fmt.Errorf("zen: delete workspace change %s: %w", e.target, err)
			}
			res.Workspaces++
		case kindBookmark, kindBookmarkFolder:
			if _, err := tx.Exec(`DELETE FROM moz_bookmarks WHERE guid = ?`, e.target); err != nil {
				return res, fmt.Errorf("zen: delete bookmark %s: %w", e.target, err)
			}
			res.Bookmarks++
		}
	}

	if _, err := tx.Exec(`DELETE FROM arczen_migration`); err != nil {
		return res, fmt.Errorf("zen: clear ledger: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("zen: commit reset: %w", err)
	}
	logger.Info("reset: previous import removed",
		slog.Int("pins", res.Pins),
		slog.Int("workspaces", res.Workspaces),
		slog.Int("bookmarks", res.Bookmarks))
	return res, nil
}
