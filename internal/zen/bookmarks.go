package zen

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/sidebar"
)

// Firefox bookmark row types and well-known folder guids.
const (
	typeBookmark = 1
	typeFolder   = 2

	unfiledGUID = "unfiled_____"
)

// BookmarkResult reports the bookmark projection of one run.
type BookmarkResult struct {
	PlacesCreated    int                   `json:"places_created"`
	FoldersCreated   int                   `json:"folders_created"`
	BookmarksCreated int                   `json:"bookmarks_created"`
	Skipped          []sidebar.SkippedItem `json:"skipped,omitempty"`
	Writes           []Write               `json:"writes,omitempty"`
}

// ProjectBookmarks mirrors the space hierarchy into moz_bookmarks under the
// unfiled root, as an independent backup of the pinned projection. It is a
// second write path on purpose: bookmark rows live in their own namespace and
// never reuse zen_pins identifiers. Tabs below MinVisitCount are excluded
// here only.
//
// The projection runs as a single transaction across all spaces, after every
// per-space pin transaction has committed. It touches only moz_* tables, so
// rolling it back leaves the imported workspaces and pins intact.
func (im *Importer) ProjectBookmarks(spaces []*sidebar.Space) (*BookmarkResult, error) {
	res := &BookmarkResult{}

	var tx *sql.Tx
	if !im.opts.DryRun {
		var err error
		tx, err = im.store.conn.Begin()
		if err != nil {
			return res, fmt.Errorf("zen: begin bookmark tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck
	}
	bw := &bookmarkWriter{
		store:     im.store,
		tx:        tx,
		res:       res,
		fakeID:    1 << 40,
		positions: make(map[int64]int),
	}

	unfiledID, err := bw.folderID(`SELECT id FROM moz_bookmarks WHERE guid = ?`, unfiledGUID)
	if err != nil {
		return res, err
	}
	if unfiledID == 0 {
		return res, fmt.Errorf("zen: unfiled bookmarks root not found")
	}

	for _, space := range spaces {
		if len(space.Tabs) == 0 {
			continue
		}
		rootID, err := bw.ensureFolder(space.Name, unfiledID, kindBookmarkFolder, space.ID)
		if err != nil {
			return res, err
		}

		// Folder rowids for this space; pre-order guarantees parents first.
		folderIDs := make(map[string]int64)
		for _, f := range space.Folders {
			parent := rootID
			if f.ParentFolderID != "" {
				p, ok := folderIDs[f.ParentFolderID]
				if !ok {
					return res, fmt.Errorf("zen: bookmark folder %q: %w: parent %s not in run mapping",
						f.Name, apperr.ErrUnresolvedDependency, f.ParentFolderID)
				}
				parent = p
			}
			id, err := bw.ensureFolder(f.Name, parent, kindBookmarkFolder, f.ID)
			if err != nil {
				return res, err
			}
			folderIDs[f.ID] = id
		}

		for _, t := range space.Tabs {
			if im.opts.MinVisitCount > 0 && t.VisitCount < im.opts.MinVisitCount {
				res.Skipped = append(res.Skipped, sidebar.SkippedItem{ID: t.ID, Reason: apperr.SkipBelowVisitCount})
				continue
			}
			parent := rootID
			if t.FolderID != "" {
				if p, ok := folderIDs[t.FolderID]; ok {
					parent = p
				}
			}
			if err := bw.importBookmark(t, parent); err != nil {
				return res, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return res, fmt.Errorf("zen: commit bookmarks: %w", err)
		}
	}
	im.logger.Info("import: bookmark projection done",
		slog.Int("places", res.PlacesCreated),
		slog.Int("folders", res.FoldersCreated),
		slog.Int("bookmarks", res.BookmarksCreated),
		slog.Int("skipped", len(res.Skipped)),
		slog.Bool("dry_run", im.opts.DryRun))
	return res, nil
}

type bookmarkWriter struct {
	store     *Store
	tx        *sql.Tx
	res       *BookmarkResult
	fakeID    int64
	positions map[int64]int
}

// queryRow reads through the transaction when one is open, and straight from
// the connection in dry-run (reads are always allowed).
func (bw *bookmarkWriter) queryRow(query string, args ...any) *sql.Row {
	if bw.tx != nil {
		return bw.tx.QueryRow(query, args...)
	}
	return bw.store.conn.QueryRow(query, args...)
}

func (bw *bookmarkWriter) folderID(query string, args ...any) (int64, error) {
	var id int64
	err := bw.queryRow(query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("zen: bookmark lookup: %w", err)
	}
	return id, nil
}

// insert records the planned write and executes it outside dry-run, returning
// the row id (simulated while planning).
func (bw *bookmarkWriter) insert(table, key, title, query string, args ...any) (int64, error) {
	bw.res.Writes = append(bw.res.Writes, Write{Table: table, Op: "insert", Key: key, Title: title})
	if bw.tx == nil {
		bw.fakeID++
		return bw.fakeID, nil
	}
	r, err := bw.tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("zen: insert %s: %w", table, err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("zen: insert %s id: %w", table, err)
	}
	return id, nil
}

// nextPosition hands out append positions per parent folder, seeded from the
// store so imported rows land after any existing children.
func (bw *bookmarkWriter) nextPosition(parent int64) int {
	if pos, ok := bw.positions[parent]; ok {
		bw.positions[parent] = pos + 1
		return pos
	}
	var pos int
	if err := bw.queryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM moz_bookmarks WHERE parent = ?`,
		parent).Scan(&pos); err != nil {
		pos = 0
	}
	bw.positions[parent] = pos + 1
	return pos
}

// ensureFolder finds a folder by title under parent or creates it.
func (bw *bookmarkWriter) ensureFolder(title string, parent int64, ledgerKind, sourceID string) (int64, error) {
	existing, err := bw.folderID(
		`SELECT id FROM moz_bookmarks WHERE parent = ? AND title = ? AND type = ?`,
		parent, title, typeFolder)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		return existing, nil
	}

	guid := NewGUID()
	now := nowMicros()
	id, err := bw.insert("moz_bookmarks", guid, title, `
		INSERT INTO moz_bookmarks (type, parent, position, title, dateAdded, lastModified, guid)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, typeFolder, parent, bw.nextPosition(parent), title, now, now, guid)
	if err != nil {
		return 0, err
	}
	if _, err := bw.insert("arczen_migration", sourceID, "", `
		INSERT OR REPLACE INTO arczen_migration (kind, source_id, target_id, workspace_uuid, created_at)
		VALUES (?, ?, ?, '', ?)
	`, ledgerKind, sourceID, guid, nowMillis()); err != nil {
		return 0, err
	}
	bw.res.FoldersCreated++
	return id, nil
}

func (bw *bookmarkWriter) importBookmark(t *sidebar.Tab, parent int64) error {
	placeID, err := bw.folderID(`SELECT id FROM moz_places WHERE url = ?`, t.URL)
	if err != nil {
		return err
	}
	if placeID == 0 {
		guid := NewGUID()
		placeID, err = bw.insert("moz_places", guid, t.Title, `
			INSERT INTO moz_places (url, title, rev_host, visit_count, frecency, last_visit_date, guid, url_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, t.URL, t.Title, RevHost(t.URL), t.VisitCount, Frecency(t.VisitCount), nowMicros(), guid, URLHash(t.URL))
		if err != nil {
			return err
		}
		bw.res.PlacesCreated++
	} else if bw.tx != nil {
		if _, err := bw.tx.Exec(`
			UPDATE moz_places SET visit_count = MAX(visit_count, ?) WHERE id = ?
		`, t.VisitCount, placeID); err != nil {
			return fmt.Errorf("zen: update place: %w", err)
		}
	}

	existing, err := bw.folderID(
		`SELECT id FROM moz_bookmarks WHERE fk = ? AND parent = ? AND type = ?`,
		placeID, parent, typeBookmark)
	if err != nil {
		return err
	}
	if existing != 0 {
		bw.res.Skipped = append(bw.res.Skipped, sidebar.SkippedItem{ID: t.ID, Reason: apperr.SkipDuplicate})
		return nil
	}

	guid := NewGUID()
	now := nowMicros()
	if _, err := bw.insert("moz_bookmarks", guid, t.Title, `
		INSERT INTO moz_bookmarks (type, fk, parent, position, title, dateAdded, lastModified, guid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, typeBookmark, placeID, parent, bw.nextPosition(parent), t.Title, now, now, guid); err != nil {
		return err
	}
	if _, err := bw.insert("arczen_migration", t.ID, "", `
		INSERT OR REPLACE INTO arczen_migration (kind, source_id, target_id, workspace_uuid, created_at)
		VALUES (?, ?, ?, '', ?)
	`, kindBookmark, t.ID, guid, nowMillis()); err != nil {
		return err
	}
	bw.res.BookmarksCreated++
	return nil
}
