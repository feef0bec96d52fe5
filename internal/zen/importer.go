package zen

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/sidebar"
)

// Options configure one import run.
type Options struct {
	// DryRun resolves every dependency and reports the full planned write
	// set without mutating the store (and without taking a backup).
	DryRun bool
	// MinVisitCount excludes low-visit tabs from the bookmark projection
	// only. The pinned projection always writes every tab.
	MinVisitCount int
	// BackupDir receives the pre-import snapshot; empty means next to the
	// database file.
	BackupDir string
	// Containers maps space id → containers.json userContextId.
	Containers map[string]int
}

// Write is one row-level operation. It is recorded identically in dry-run and
// real mode so the two reports are directly diffable.
type Write struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
}

// RunMapping is the sourceId → targetId indirection built up during one run.
// It is the only channel through which later writes resolve rows created
// earlier in the same run.
type RunMapping struct {
	Workspaces map[string]string
	Folders    map[string]string
	Pins       map[string]string
}

// SpaceResult reports what one space's import did (or, in dry-run, would do).
type SpaceResult struct {
	SpaceID           string                `json:"space_id"`
	SpaceName         string                `json:"space_name"`
	WorkspaceUUID     string                `json:"workspace_uuid"`
	WorkspacesCreated int                   `json:"workspaces_created"`
	FoldersCreated    int                   `json:"folders_created"`
	PinsCreated       int                   `json:"pins_created"`
	Renumbered        int                   `json:"renumbered"`
	Skipped           []sidebar.SkippedItem `json:"skipped,omitempty"`
	Writes            []Write               `json:"writes,omitempty"`
}

// Importer writes spaces into the store one transaction per space, so a
// failure in one space never corrupts another's committed work.
type Importer struct {
	store      *Store
	logger     *slog.Logger
	opts       Options
	mapping    RunMapping
	backupPath string
}

// NewImporter prepares an import run against an open store.
func NewImporter(store *Store, logger *slog.Logger, opts Options) *Importer {
	return &Importer{
		store:  store,
		logger: logger,
		opts:   opts,
		mapping: RunMapping{
			Workspaces: make(map[string]string),
			Folders:    make(map[string]string),
			Pins:       make(map[string]string),
		},
	}
}

// Mapping returns the run's sourceId → targetId mapping.
func (im *Importer) Mapping() RunMapping { return im.mapping }

// BackupPath returns the snapshot taken before the first mutating write, or
// "" when none was needed.
func (im *Importer) BackupPath() string { return im.backupPath }

// ImportSpace writes one space: workspace row, then folders in pre-order so
// parents exist before children, then pins. All writes happen in a single
// transaction; any error rolls the space back completely.
func (im *Importer) ImportSpace(space *sidebar.Space) (*SpaceResult, error) {
	res := &SpaceResult{SpaceID: space.ID, SpaceName: space.Name}
	res.Renumbered = normalizePositions(space, im.logger)

	if !im.opts.DryRun && im.backupPath == "" {
		path, err := im.store.Backup(im.opts.BackupDir)
		if err != nil {
			return res, err
		}
		im.backupPath = path
		im.logger.Info("import: store backed up", slog.String("path", path))
	}

	var tx *sql.Tx
	if !im.opts.DryRun {
		var err error
		tx, err = im.store.conn.Begin()
		if err != nil {
			return res, fmt.Errorf("zen: begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // best-effort on failure path
	}
	w := &spaceWriter{tx: tx, res: res}

	if err := im.importWorkspace(w, space); err != nil {
		return res, err
	}
	if err := im.importFolders(w, space); err != nil {
		return res, err
	}
	if err := im.importPins(w, space); err != nil {
		return res, err
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return res, fmt.Errorf("zen: commit space %s: %w", space.Name, err)
		}
	}
	im.logger.Info("import: space done",
		slog.String("space", space.Name),
		slog.String("workspace", res.WorkspaceUUID),
		slog.Int("folders", res.FoldersCreated),
		slog.Int("pins", res.PinsCreated),
		slog.Int("skipped", len(res.Skipped)),
		slog.Bool("dry_run", im.opts.DryRun))
	return res, nil
}

func (im *Importer) importWorkspace(w *spaceWriter, space *sidebar.Space) error {
	if existing, err := im.store.ledgerTarget(kindWorkspace, space.ID); err != nil {
		return err
	} else if existing != "" {
		im.mapping.Workspaces[space.ID] = existing
		w.res.WorkspaceUUID = existing
		im.logger.Debug("import: workspace already present",
			slog.String("space", space.Name), slog.String("workspace", existing))
		return nil
	}

	wsUUID := NewWorkspaceUUID()
	now := nowMillis()
	themeType, themeColors := workspaceTheme(space.Color)
	var icon any
	if space.Icon != "" {
		icon = space.Icon
	}
	if err := w.exec("zen_workspaces", "insert", wsUUID, space.Name, `
		INSERT INTO zen_workspaces (
			uuid, name, container_id, position, created_at, updated_at, icon,
			theme_type, theme_colors, theme_opacity, theme_rotation, theme_texture
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1.0, 0, 0)
	`, wsUUID, space.Name, im.containerID(space.ID), nextWorkspacePosition(w), now, now, icon, themeType, themeColors); err != nil {
		return err
	}
	if err := w.exec("zen_workspaces_changes", "insert", wsUUID, "", `
		INSERT OR REPLACE INTO zen_workspaces_changes (uuid, timestamp) VALUES (?, ?)
	`, wsUUID, now); err != nil {
		return err
	}
	if err := w.ledger(kindWorkspace, space.ID, wsUUID, wsUUID); err != nil {
		return err
	}
	im.mapping.Workspaces[space.ID] = wsUUID
	w.res.WorkspaceUUID = wsUUID
	w.res.WorkspacesCreated++
	return nil
}

func (im *Importer) importFolders(w *spaceWriter, space *sidebar.Space) error {
	wsUUID := im.mapping.Workspaces[space.ID]
	for _, f := range space.Folders {
		if existing, err := im.store.ledgerTarget(kindFolder, f.ID); err != nil {
			return err
		} else if existing != "" {
			im.mapping.Folders[f.ID] = existing
			w.skip(f.ID, apperr.SkipDuplicate)
			continue
		}

		var parent any
		if f.ParentFolderID != "" {
			p, ok := im.mapping.Folders[f.ParentFolderID]
			if !ok {
				return fmt.Errorf("zen: folder %q: %w: parent %s not in run mapping",
					f.Name, apperr.ErrUnresolvedDependency, f.ParentFolderID)
			}
			parent = p
		}

		folderUUID := NewWorkspaceUUID()
		now := nowMillis()
		if err := w.exec("zen_pins", "insert", folderUUID, f.Name, `
			INSERT INTO zen_pins (
				uuid, title, url, container_id, workspace_uuid, position,
				is_essential, is_group, folder_parent_uuid, created_at, updated_at,
				edited_title, is_folder_collapsed, folder_icon
			) VALUES (?, ?, NULL, ?, ?, ?, 0, 1, ?, ?, ?, 0, 0, NULL)
		`, folderUUID, f.Name, im.containerID(space.ID), wsUUID, f.Position, parent, now, now); err != nil {
			return err
		}
		if err := w.exec("zen_pins_changes", "insert", folderUUID, "", `
			INSERT OR REPLACE INTO zen_pins_changes (uuid, timestamp) VALUES (?, ?)
		`, folderUUID, now); err != nil {
			return err
		}
		if err := w.ledger(kindFolder, f.ID, folderUUID, wsUUID); err != nil {
			return err
		}
		im.mapping.Folders[f.ID] = folderUUID
		w.res.FoldersCreated++
	}
	return nil
}

func (im *Importer) importPins(w *spaceWriter, space *sidebar.Space) error {
	wsUUID := im.mapping.Workspaces[space.ID]
	for _, t := range space.Tabs {
		if existing, err := im.store.ledgerTarget(kindPin, t.ID); err != nil {
			return err
		} else if existing != "" {
			im.mapping.Pins[t.ID] = existing
			w.skip(t.ID, apperr.SkipDuplicate)
			continue
		}

		var folder any
		if t.FolderID != "" {
			f, ok := im.mapping.Folders[t.FolderID]
			if !ok {
				return fmt.Errorf("zen: pin %q: %w: folder %s not in run mapping",
					t.Title, apperr.ErrUnresolvedDependency, t.FolderID)
			}
			folder = f
		}

		pinUUID := NewWorkspaceUUID()
		now := nowMillis()
		if err := w.exec("zen_pins", "insert", pinUUID, t.Title, `
			INSERT INTO zen_pins (
				uuid, title, url, container_id, workspace_uuid, position,
				is_essential, is_group, folder_parent_uuid, created_at, updated_at,
				edited_title, is_folder_collapsed, folder_icon
			) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, 0, 0, NULL)
		`, pinUUID, t.Title, t.URL, im.containerID(space.ID), wsUUID, t.Position,
			boolToInt(t.IsEssential), folder, now, now); err != nil {
			return err
		}
		if err := w.exec("zen_pins_changes", "insert", pinUUID, "", `
			INSERT OR REPLACE INTO zen_pins_changes (uuid, timestamp) VALUES (?, ?)
		`, pinUUID, now); err != nil {
			return err
		}
		if err := w.ledger(kindPin, t.ID, pinUUID, wsUUID); err != nil {
			return err
		}
		im.mapping.Pins[t.ID] = pinUUID
		w.res.PinsCreated++
	}
	return nil
}

func (im *Importer) containerID(spaceID string) int {
	if id, ok := im.opts.Containers[spaceID]; ok && id > 0 {
		return id
	}
	return 1
}

// nextWorkspacePosition spaces workspaces out the way Zen does, leaving room
// for manual reordering between them.
func nextWorkspacePosition(w *spaceWriter) int {
	if w.tx == nil {
		return 1000
	}
	var max sql.NullInt64
	if err := w.tx.QueryRow(`SELECT MAX(position) FROM zen_workspaces`).Scan(&max); err != nil {
		return 1000
	}
	return int(max.Int64) + 1000
}

// spaceWriter records every planned write and, outside dry-run, executes it.
type spaceWriter struct {
	tx  *sql.Tx
	res *SpaceResult
}

func (w *spaceWriter) exec(table, op, key, title, query string, args ...any) error {
	w.res.Writes = append(w.res.Writes, Write{Table: table, Op: op, Key: key, Title: title})
	if w.tx == nil {
		return nil
	}
	if _, err := w.tx.Exec(query, args...); err != nil {
		return fmt.Errorf("zen: %s %s: %w", op, table, err)
	}
	return nil
}

func (w *spaceWriter) ledger(kind, sourceID, targetID, workspaceUUID string) error {
	return w.exec("arczen_migration", "insert", sourceID, "", `
		INSERT OR REPLACE INTO arczen_migration (kind, source_id, target_id, workspace_uuid, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, kind, sourceID, targetID, workspaceUUID, nowMillis())
}

func (w *spaceWriter) skip(id, reason string) {
	w.res.Skipped = append(w.res.Skipped, sidebar.SkippedItem{ID: id, Reason: reason})
}

// normalizePositions checks that positions are contiguous from zero within
// every folder/workspace bucket and renumbers by stable sort where they are
// not. Returns the number of buckets touched; never reorders a valid bucket.
func normalizePositions(space *sidebar.Space, logger *slog.Logger) int {
	buckets := make(map[string][]*int)
	for _, f := range space.Folders {
		buckets[f.ParentFolderID] = append(buckets[f.ParentFolderID], &f.Position)
	}
	for _, t := range space.Tabs {
		key := t.FolderID
		if t.IsEssential {
			key = "\x00essentials"
		}
		buckets[key] = append(buckets[key], &t.Position)
	}

	renumbered := 0
	for key, ps := range buckets {
		if contiguous(ps) {
			continue
		}
		sort.SliceStable(ps, func(i, j int) bool { return *ps[i] < *ps[j] })
		for i, p := range ps {
			*p = i
		}
		renumbered++
		logger.Warn("import: non-contiguous positions renumbered",
			slog.String("space", space.Name),
			slog.String("bucket", key),
			slog.String("error", apperr.ErrInvalidOrdering.Error()))
	}
	return renumbered
}

func contiguous(ps []*int) bool {
	seen := make([]bool, len(ps))
	for _, p := range ps {
		if *p < 0 || *p >= len(ps) || seen[*p] {
			return false
		}
		seen[*p] = true
	}
	return true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// workspaceTheme converts an Arc mid-tone color to Zen's gradient theme
// format. The constants reproduce the pastel transform Arc applies before
// display, calibrated against measured space colors.
func workspaceTheme(c *sidebar.Color) (any, any) {
	if c == nil {
		return nil, nil
	}
	clampByte := func(v float64) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return int(v)
	}
	colors := []map[string]any{{
		"c":         [3]int{clampByte(185 + c.R*72), clampByte(225 + c.G*25), clampByte(150 + c.B*170)},
		"isCustom":  false,
		"algorithm": "floating",
		"isPrimary": true,
		"lightness": "75",
		"position":  map[string]int{"x": 228, "y": 253},
		"type":      "explicit-lightness",
	}}
	data, err := json.Marshal(colors)
	if err != nil {
		return nil, nil
	}
	return "gradient", string(data)
}
