package migrate

import (
	"testing"

	"github.com/starford/arczen/internal/testutil"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		SidebarPath: testutil.SidebarFile(t),
		ProfileDir:  testutil.ZenProfile(t),
		BackupDir:   t.TempDir(),
		Bookmarks:   true,
	}
}

func TestExtract(t *testing.T) {
	spaces, skipped, err := Extract(testutil.SidebarFile(t), "", testutil.Logger())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(spaces) != 2 {
		t.Fatalf("spaces = %d, want 2", len(spaces))
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %+v, want none", skipped)
	}

	personal := spaces[0]
	if personal.Name != "Personal" || len(personal.Tabs) != 4 || len(personal.Folders) != 1 {
		t.Errorf("personal = %s: %d tabs, %d folders", personal.Name, len(personal.Tabs), len(personal.Folders))
	}
	essentials := 0
	for _, tab := range personal.Tabs {
		if tab.IsEssential {
			essentials++
		}
	}
	if essentials != 1 {
		t.Errorf("essentials = %d, want 1", essentials)
	}
	if err := personal.Validate(); err != nil {
		t.Errorf("invalid personal space: %v", err)
	}
}

func TestRun_DryThenReal(t *testing.T) {
	opts := testOptions(t)

	opts.DryRun = true
	dry, err := Run(opts, testutil.Logger())
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.BackupPath != "" {
		t.Error("dry run took a backup")
	}

	opts.DryRun = false
	real, err := Run(opts, testutil.Logger())
	if err != nil {
		t.Fatalf("real run: %v", err)
	}
	if real.BackupPath == "" {
		t.Error("real run took no backup")
	}

	dw, df, dp := dry.Totals()
	rw, rf, rp := real.Totals()
	if dw != rw || df != rf || dp != rp {
		t.Errorf("dry totals %d/%d/%d != real totals %d/%d/%d", dw, df, dp, rw, rf, rp)
	}
	if rw != 2 || rf != 1 || rp != 5 {
		t.Errorf("totals = %d workspaces, %d folders, %d pins", rw, rf, rp)
	}
	if real.Bookmarks == nil || real.Bookmarks.BookmarksCreated != dry.Bookmarks.BookmarksCreated {
		t.Errorf("bookmark counts diverge: real=%+v dry=%+v", real.Bookmarks, dry.Bookmarks)
	}
	if len(real.Failures) != 0 {
		t.Errorf("failures = %+v", real.Failures)
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	opts := testOptions(t)

	if _, err := Run(opts, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	second, err := Run(opts, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	w, f, p := second.Totals()
	if w != 0 || f != 0 || p != 0 {
		t.Errorf("second run created %d/%d/%d, want nothing", w, f, p)
	}
}

func TestRun_MissingDocumentFailsBeforeWrites(t *testing.T) {
	opts := testOptions(t)
	opts.SidebarPath = opts.SidebarPath + ".missing"

	if _, err := Run(opts, testutil.Logger()); err == nil {
		t.Fatal("expected error for missing sidebar document")
	}
}
