package zen

import (
	"errors"
	"testing"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/testutil"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testutil.PlacesDB(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSpace() *sidebar.Space {
	return &sidebar.Space{
		ID:   "S1",
		Name: "Work",
		Icon: "💼",
		Folders: []*sidebar.Folder{
			{ID: "F1", Name: "Projects", Position: 1},
			{ID: "F2", Name: "Archive", ParentFolderID: "F1", Position: 0},
		},
		Tabs: []*sidebar.Tab{
			{ID: "T1", Title: "One", URL: "https://one.example", SpaceID: "S1", Position: 0, VisitCount: 1},
			{ID: "T2", Title: "Two", URL: "https://two.example", SpaceID: "S1", Position: 2, VisitCount: 7},
			{ID: "T3", Title: "Three", URL: "https://three.example", SpaceID: "S1", FolderID: "F2", Position: 0, VisitCount: 1},
		},
	}
}

func TestImportSpace(t *testing.T) {
	store := testStore(t)
	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})

	res, err := im.ImportSpace(testSpace())
	if err != nil {
		t.Fatalf("ImportSpace: %v", err)
	}
	if res.WorkspacesCreated != 1 || res.FoldersCreated != 2 || res.PinsCreated != 3 {
		t.Fatalf("result = %+v", res)
	}
	if im.BackupPath() == "" {
		t.Error("no backup taken before first write")
	}

	var wsCount int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM zen_workspaces`).Scan(&wsCount); err != nil {
		t.Fatal(err)
	}
	if wsCount != 1 {
		t.Errorf("workspaces = %d, want 1", wsCount)
	}

	// Nested folder must reference its parent's new uuid.
	var parent string
	err = store.conn.QueryRow(`
		SELECT folder_parent_uuid FROM zen_pins WHERE is_group = 1 AND title = 'Archive'
	`).Scan(&parent)
	if err != nil {
		t.Fatal(err)
	}
	if parent != im.Mapping().Folders["F1"] {
		t.Errorf("Archive parent = %q, want F1's uuid %q", parent, im.Mapping().Folders["F1"])
	}

	// Pin inside F2 references F2's uuid; root pins have no folder.
	var folder any
	if err := store.conn.QueryRow(`SELECT folder_parent_uuid FROM zen_pins WHERE title = 'One'`).Scan(&folder); err != nil {
		t.Fatal(err)
	}
	if folder != nil {
		t.Errorf("root pin folder = %v, want NULL", folder)
	}
}

func TestImportSpace_DryRunMatchesRealRun(t *testing.T) {
	store := testStore(t)

	dry := NewImporter(store, testutil.Logger(), Options{DryRun: true})
	dryRes, err := dry.ImportSpace(testSpace())
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.BackupPath() != "" {
		t.Error("dry run must not take a backup")
	}
	var rows int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM zen_pins`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Fatalf("dry run wrote %d rows", rows)
	}

	real := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})
	realRes, err := real.ImportSpace(testSpace())
	if err != nil {
		t.Fatalf("real run: %v", err)
	}

	if dryRes.WorkspacesCreated != realRes.WorkspacesCreated ||
		dryRes.FoldersCreated != realRes.FoldersCreated ||
		dryRes.PinsCreated != realRes.PinsCreated ||
		len(dryRes.Skipped) != len(realRes.Skipped) ||
		len(dryRes.Writes) != len(realRes.Writes) {
		t.Errorf("dry = %+v\nreal = %+v", dryRes, realRes)
	}
}

func TestImportSpace_SecondRunSkipsDuplicates(t *testing.T) {
	store := testStore(t)
	backups := t.TempDir()

	first := NewImporter(store, testutil.Logger(), Options{BackupDir: backups})
	if _, err := first.ImportSpace(testSpace()); err != nil {
		t.Fatal(err)
	}

	second := NewImporter(store, testutil.Logger(), Options{BackupDir: backups})
	res, err := second.ImportSpace(testSpace())
	if err != nil {
		t.Fatal(err)
	}
	if res.WorkspacesCreated != 0 || res.FoldersCreated != 0 || res.PinsCreated != 0 {
		t.Fatalf("second run created rows: %+v", res)
	}
	if len(res.Skipped) != 5 {
		t.Fatalf("skipped = %d, want 5 (2 folders + 3 pins)", len(res.Skipped))
	}
	for _, s := range res.Skipped {
		if s.Reason != apperr.SkipDuplicate {
			t.Errorf("skip %s reason = %q", s.ID, s.Reason)
		}
	}

	var pinRows int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM zen_pins`).Scan(&pinRows); err != nil {
		t.Fatal(err)
	}
	if pinRows != 5 {
		t.Errorf("zen_pins rows = %d, want 5 (no duplicates)", pinRows)
	}

	// The second run still resolves the same workspace for the space.
	if second.Mapping().Workspaces["S1"] != first.Mapping().Workspaces["S1"] {
		t.Error("second run resolved a different workspace uuid")
	}
}

func TestImportSpace_UnresolvedDependency(t *testing.T) {
	store := testStore(t)
	im := NewImporter(store, testutil.Logger(), Options{BackupDir: t.TempDir()})

	space := &sidebar.Space{
		ID:   "S1",
		Name: "Broken",
		Tabs: []*sidebar.Tab{
			{ID: "T1", Title: "One", URL: "https://one.example", FolderID: "MISSING", Position: 0},
		},
	}
	_, err := im.ImportSpace(space)
	if !errors.Is(err, apperr.ErrUnresolvedDependency) {
		t.Fatalf("err = %v, want ErrUnresolvedDependency", err)
	}

	// The space's transaction must have rolled back completely.
	var wsCount int
	if err := store.conn.QueryRow(`SELECT COUNT(*) FROM zen_workspaces`).Scan(&wsCount); err != nil {
		t.Fatal(err)
	}
	if wsCount != 0 {
		t.Errorf("workspaces = %d after rollback, want 0", wsCount)
	}
}

func TestNormalizePositions(t *testing.T) {
	logger := testutil.Logger()

	gapped := &sidebar.Space{
		Name: "Gapped",
		Tabs: []*sidebar.Tab{
			{ID: "T1", Position: 0},
			{ID: "T2", Position: 5},
			{ID: "T3", Position: 2},
		},
	}
	if n := normalizePositions(gapped, logger); n != 1 {
		t.Fatalf("renumbered buckets = %d, want 1", n)
	}
	if gapped.Tabs[0].Position != 0 || gapped.Tabs[2].Position != 1 || gapped.Tabs[1].Position != 2 {
		t.Errorf("positions = %d,%d,%d", gapped.Tabs[0].Position, gapped.Tabs[1].Position, gapped.Tabs[2].Position)
	}

	valid := testSpace()
	if n := normalizePositions(valid, logger); n != 0 {
		t.Errorf("valid space renumbered %d buckets", n)
	}
	if valid.Tabs[1].Position != 2 {
		t.Error("valid positions must not be reordered")
	}
}
