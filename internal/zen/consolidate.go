package zen

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/arczen/internal/apperr"
)

// ConsolidationResult reports one consolidation pass.
type ConsolidationResult struct {
	PinsMoved         int `json:"pins_moved"`
	PinsRenumbered    int `json:"pins_renumbered"`
	WorkspacesRemoved int `json:"workspaces_removed"`
}

// MappingFile is the on-disk format for a consolidation mapping: each entry
// rewrites one temporary workspace uuid (minted during import) to the desired
// pre-existing one, usually chosen after a human reviews the created
// workspaces.
type MappingFile struct {
	Workspaces map[string]string `yaml:"workspaces"`
}

// LoadMapping reads a consolidation mapping from a YAML file.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zen: read mapping file: %w", err)
	}
	var mf MappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("zen: parse mapping file: %w", err)
	}
	if len(mf.Workspaces) == 0 {
		return nil, fmt.Errorf("zen: mapping file has no workspaces section")
	}
	return mf.Workspaces, nil
}

// Consolidate rewrites every reference to each temporary workspace uuid to
// its desired final uuid, across zen_pins, the changes tables, the migration
// ledger and zen_workspaces itself, in one transaction. On any failure the
// whole rewrite rolls back and the temporary uuids remain authoritative,
// which is degraded but consistent; the pass can simply be retried.
func (s *Store) Consolidate(mapping map[string]string, logger *slog.Logger) (*ConsolidationResult, error) {
	res := &ConsolidationResult{}
	tx, err := s.conn.Begin()
	if err != nil {
		return res, fmt.Errorf("zen: %w: begin tx: %v", apperr.ErrConsolidation, err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := nowMillis()
	for temp, final := range mapping {
		if temp == final {
			continue
		}
		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM zen_workspaces WHERE uuid = ?`, final).Scan(&count); err != nil {
			return res, fmt.Errorf("zen: %w: check workspace %s: %v", apperr.ErrConsolidation, final, err)
		}
		if count == 0 {
			return res, fmt.Errorf("zen: %w: desired workspace %s does not exist", apperr.ErrConsolidation, final)
		}

		r, err := tx.Exec(`UPDATE zen_pins SET workspace_uuid = ? WHERE workspace_uuid = ?`, final, temp)
		if err != nil {
			return res, fmt.Errorf("zen: %w: move pins %s -> %s: %v", apperr.ErrConsolidation, temp, final, err)
		}
		moved, _ := r.RowsAffected()
		res.PinsMoved += int(moved)

		// Moved pins keep their original positions and can collide with
		// pins already in the final workspace, so every merged bucket is
		// renumbered.
		renumbered, err := renumberWorkspacePins(tx, final)
		if err != nil {
			return res, fmt.Errorf("zen: %w: renumber pins in %s: %v", apperr.ErrConsolidation, final, err)
		}
		res.PinsRenumbered += renumbered

		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO zen_pins_changes (uuid, timestamp)
			SELECT uuid, ? FROM zen_pins WHERE workspace_uuid = ?
		`, now, final); err != nil {
			return res, fmt.Errorf("zen: %w: record pin changes: %v", apperr.ErrConsolidation, err)
		}

		r, err = tx.Exec(`DELETE FROM zen_workspaces WHERE uuid = ?`, temp)
		if err != nil {
			return res, fmt.Errorf("zen: %w: drop temporary workspace %s: %v", apperr.ErrConsolidation, temp, err)
		}
		removed, _ := r.RowsAffected()
		res.WorkspacesRemoved += int(removed)
		if _, err := tx.Exec(`DELETE FROM zen_workspaces_changes WHERE uuid = ?`, temp); err != nil {
			return res, fmt.Errorf("zen: %w: drop workspace change %s: %v", apperr.ErrConsolidation, temp, err)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO zen_workspaces_changes (uuid, timestamp) VALUES (?, ?)
		`, final, now); err != nil {
			return res, fmt.Errorf("zen: %w: record workspace change: %v", apperr.ErrConsolidation, err)
		}

		// Keep the ledger pointing at the surviving uuid so later re-runs
		// and resets see the consolidated state.
		if _, err := tx.Exec(`
			UPDATE arczen_migration SET target_id = ? WHERE kind = ? AND target_id = ?
		`, final, kindWorkspace, temp); err != nil {
			return res, fmt.Errorf("zen: %w: rewrite ledger workspaces: %v", apperr.ErrConsolidation, err)
		}
		if _, err := tx.Exec(`
			UPDATE arczen_migration SET workspace_uuid = ? WHERE workspace_uuid = ?
		`, final, temp); err != nil {
			return res, fmt.Errorf("zen: %w: rewrite ledger references: %v", apperr.ErrConsolidation, err)
		}
		logger.Info("consolidate: workspace rewritten",
			slog.String("from", temp),
			slog.String("to", final),
			slog.Int64("pins", moved))
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("zen: %w: commit: %v", apperr.ErrConsolidation, err)
	}
	return res, nil
}

// renumberWorkspacePins rewrites positions to be contiguous from zero within
// every bucket (root pins, each folder, essentials) of one workspace, keeping
// the existing order and breaking position ties by age. Returns the number of
// pins whose position changed.
func renumberWorkspacePins(tx *sql.Tx, workspaceUUID string) (int, error) {
	rows, err := tx.Query(`
		SELECT uuid, COALESCE(folder_parent_uuid, ''), is_essential, position
		FROM zen_pins WHERE workspace_uuid = ?
		ORDER BY position, created_at, uuid
	`, workspaceUUID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type pin struct {
		uuid     string
		position int
	}
	buckets := make(map[string][]pin)
	for rows.Next() {
		var p pin
		var parent string
		var essential int
		if err := rows.Scan(&p.uuid, &parent, &essential, &p.position); err != nil {
			return 0, err
		}
		key := parent
		if essential != 0 {
			key = "\x00essentials"
		}
		buckets[key] = append(buckets[key], p)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	renumbered := 0
	for _, pins := range buckets {
		for i, p := range pins {
			if p.position == i {
				continue
			}
			if _, err := tx.Exec(`UPDATE zen_pins SET position = ? WHERE uuid = ?`, i, p.uuid); err != nil {
				return renumbered, err
			}
			renumbered++
		}
	}
	return renumbered, nil
}
