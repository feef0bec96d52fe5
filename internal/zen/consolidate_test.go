package zen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/testutil"
)

func TestConsolidate(t *testing.T) {
	store := testStore(t)
	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})
	if _, err := im.ImportSpace(testSpace()); err != nil {
		t.Fatal(err)
	}
	tempUUID := im.Mapping().Workspaces["S1"]

	// A workspace the user already had and wants the pins moved into. Its
	// existing pin sits at position 0, colliding with the moved ones.
	finalUUID := NewWorkspaceUUID()
	if _, err := store.conn.Exec(`
		INSERT INTO zen_workspaces (uuid, name, container_id, position, created_at, updated_at)
		VALUES (?, 'Existing Work', 1, 0, 0, 0)
	`, finalUUID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.conn.Exec(`
		INSERT INTO zen_pins (
			uuid, title, url, container_id, workspace_uuid, position,
			is_essential, is_group, folder_parent_uuid, created_at, updated_at,
			edited_title, is_folder_collapsed, folder_icon
		) VALUES (?, 'Kept', 'https://kept.example', 1, ?, 0, 0, 0, NULL, 0, 0, 0, 0, NULL)
	`, NewWorkspaceUUID(), finalUUID); err != nil {
		t.Fatal(err)
	}

	res, err := store.Consolidate(map[string]string{tempUUID: finalUUID}, testutil.Logger())
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if res.PinsMoved != 5 || res.WorkspacesRemoved != 1 {
		t.Fatalf("result = %+v, want 5 pins moved, 1 workspace removed", res)
	}
	if res.PinsRenumbered == 0 {
		t.Error("colliding positions were not renumbered")
	}

	// The merged root bucket is contiguous from zero again.
	rows, err := store.conn.Query(`
		SELECT position FROM zen_pins
		WHERE workspace_uuid = ? AND folder_parent_uuid IS NULL AND is_essential = 0
		ORDER BY position
	`, finalUUID)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var positions []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			t.Fatal(err)
		}
		positions = append(positions, p)
	}
	if len(positions) != 4 {
		t.Fatalf("root bucket has %d pins, want 4", len(positions))
	}
	for i, p := range positions {
		if p != i {
			t.Errorf("root bucket positions = %v, want contiguous from 0", positions)
			break
		}
	}

	// No row may still reference the temporary uuid.
	for i, q := range []string{
		`SELECT COUNT(*) FROM zen_pins WHERE workspace_uuid = ?`,
		`SELECT COUNT(*) FROM zen_workspaces WHERE uuid = ?`,
	} {
		var n int
		if err := store.conn.QueryRow(q, tempUUID).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("query %d: %d rows still reference temp uuid", i, n)
		}
	}

	var ledgerRefs int
	if err := store.conn.QueryRow(
		`SELECT COUNT(*) FROM arczen_migration WHERE target_id = ? OR workspace_uuid = ?`,
		tempUUID, tempUUID).Scan(&ledgerRefs); err != nil {
		t.Fatal(err)
	}
	if ledgerRefs != 0 {
		t.Errorf("%d ledger rows still reference temp uuid", ledgerRefs)
	}
}

func TestConsolidate_ActivePointerFollowsMapping(t *testing.T) {
	dir := testutil.ZenProfile(t)
	store, err := Open(filepath.Join(dir, "places.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})
	if _, err := im.ImportSpace(testSpace()); err != nil {
		t.Fatal(err)
	}
	tempUUID := im.Mapping().Workspaces["S1"]
	if err := SetActiveWorkspace(dir, tempUUID); err != nil {
		t.Fatal(err)
	}

	finalUUID := NewWorkspaceUUID()
	if _, err := store.conn.Exec(`
		INSERT INTO zen_workspaces (uuid, name, container_id, position, created_at, updated_at)
		VALUES (?, 'Existing Work', 1, 0, 0, 0)
	`, finalUUID); err != nil {
		t.Fatal(err)
	}

	mapping := map[string]string{tempUUID: finalUUID}
	if _, err := store.Consolidate(mapping, testutil.Logger()); err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if _, err := RetargetActiveWorkspace(dir, mapping); err != nil {
		t.Fatalf("RetargetActiveWorkspace: %v", err)
	}

	// prefs.js must not point at the workspace the pass just deleted.
	active, err := ActiveWorkspace(dir)
	if err != nil {
		t.Fatal(err)
	}
	if active != finalUUID {
		t.Errorf("active workspace = %q, want %q", active, finalUUID)
	}
}

func TestConsolidate_MissingTargetRollsBack(t *testing.T) {
	store := testStore(t)
	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})
	if _, err := im.ImportSpace(testSpace()); err != nil {
		t.Fatal(err)
	}
	tempUUID := im.Mapping().Workspaces["S1"]

	_, err := store.Consolidate(map[string]string{tempUUID: "{00000000-0000-0000-0000-000000000000}"}, testutil.Logger())
	if !errors.Is(err, apperr.ErrConsolidation) {
		t.Fatalf("err = %v, want ErrConsolidation", err)
	}

	// Temporary ids stay authoritative after rollback.
	var n int
	if err := store.conn.QueryRow(
		`SELECT COUNT(*) FROM zen_pins WHERE workspace_uuid = ?`, tempUUID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("pins under temp uuid = %d after rollback, want 5", n)
	}
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	content := "workspaces:\n  \"{temp-a}\": \"{final-a}\"\n  \"{temp-b}\": \"{final-b}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	if len(m) != 2 || m["{temp-a}"] != "{final-a}" {
		t.Errorf("mapping = %v", m)
	}

	if err := os.WriteFile(path, []byte("workspaces: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMapping(path); err == nil {
		t.Error("empty mapping should be rejected")
	}
}

func TestReset(t *testing.T) {
	store := testStore(t)
	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})
	space := testSpace()
	if _, err := im.ImportSpace(space); err != nil {
		t.Fatal(err)
	}
	if _, err := im.ProjectBookmarks([]*sidebar.Space{space}); err != nil {
		t.Fatal(err)
	}

	res, err := store.Reset(testutil.Logger())
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.Pins != 5 || res.Workspaces != 1 {
		t.Errorf("result = %+v", res)
	}

	for _, q := range []string{
		`SELECT COUNT(*) FROM zen_pins`,
		`SELECT COUNT(*) FROM zen_workspaces`,
		`SELECT COUNT(*) FROM arczen_migration`,
	} {
		var n int
		if err := store.conn.QueryRow(q).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s = %d after reset, want 0", q, n)
		}
	}

	// The Places roots are not ours to delete.
	var roots int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM moz_bookmarks WHERE guid IN ('root________','unfiled_____')`).Scan(&roots); err != nil {
		t.Fatal(err)
	}
	if roots != 2 {
		t.Errorf("places roots = %d, want 2", roots)
	}
}
