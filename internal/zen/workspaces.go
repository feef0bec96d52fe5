package zen

import "fmt"

// Workspace is one zen_workspaces row, as shown to the review surfaces.
type Workspace struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	ContainerID int    `json:"container_id"`
	Position    int64  `json:"position"`
	Icon        string `json:"icon,omitempty"`
	Imported    bool   `json:"imported"`
}

// Workspaces lists every workspace in the store, flagging the ones this tool
// created (present in the migration ledger) so a reviewer can tell imported
// workspaces from pre-existing ones.
func (s *Store) Workspaces() ([]Workspace, error) {
	rows, err := s.conn.Query(`
		SELECT w.uuid, w.name, COALESCE(w.container_id, 0), w.position, COALESCE(w.icon, ''),
		       EXISTS (SELECT 1 FROM arczen_migration m WHERE m.kind = ? AND m.target_id = w.uuid)
		FROM zen_workspaces w
		ORDER BY w.position, w.name
	`, kindWorkspace)
	if err != nil {
		return nil, fmt.Errorf("zen: list workspaces: %w", err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var w Workspace
		if err := rows.Scan(&w.UUID, &w.Name, &w.ContainerID, &w.Position, &w.Icon, &w.Imported); err != nil {
			return nil, fmt.Errorf("zen: scan workspace: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("zen: read workspaces: %w", err)
	}
	return out, nil
}
