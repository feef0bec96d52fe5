package zen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/testutil"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sqlite"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVerifySchema(t *testing.T) {
	store := testStore(t)
	if err := store.VerifySchema(); err != nil {
		t.Fatalf("VerifySchema on full schema: %v", err)
	}
}

func TestVerifySchema_MissingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.sqlite")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.VerifySchema(); err == nil {
		t.Fatal("empty database passed schema check")
	}
}

func TestBackup(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()

	path, err := store.Backup(dir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("backup file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("backup file is empty")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("backup landed in %s, want %s", filepath.Dir(path), dir)
	}
}

func TestAnalyzeSchema(t *testing.T) {
	store := testStore(t)
	tables, err := store.AnalyzeSchema()
	if err != nil {
		t.Fatalf("AnalyzeSchema: %v", err)
	}
	cols, ok := tables["zen_pins"]
	if !ok {
		t.Fatalf("zen_pins missing from %v", tables)
	}
	found := false
	for _, c := range cols {
		if c == "workspace_uuid" {
			found = true
		}
	}
	if !found {
		t.Errorf("zen_pins columns = %v, want workspace_uuid present", cols)
	}
	if _, ok := tables["arczen_migration"]; !ok {
		t.Error("ledger table missing from analysis")
	}
}

func TestFindProfile(t *testing.T) {
	root := t.TempDir()
	ini := `[General]
StartWithLastProfile=1

[Profile0]
Name=alpha
IsRelative=1
Path=Profiles/alpha.dev

[Profile1]
Name=beta
IsRelative=1
Path=Profiles/beta.dev
Default=1
`
	if err := os.WriteFile(filepath.Join(root, "profiles.ini"), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := FindProfile(root, "")
	if err != nil {
		t.Fatalf("FindProfile default: %v", err)
	}
	if p.Name != "beta" || !p.Default {
		t.Errorf("default profile = %+v, want beta", p)
	}
	if p.Dir != filepath.Join(root, "Profiles", "beta.dev") {
		t.Errorf("dir = %q", p.Dir)
	}

	p, err = FindProfile(root, "alpha")
	if err != nil {
		t.Fatalf("FindProfile alpha: %v", err)
	}
	if p.Name != "alpha" {
		t.Errorf("profile = %+v", p)
	}

	if _, err := FindProfile(root, "gamma"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown profile err = %v, want ErrNotFound", err)
	}
}

func TestSetActiveWorkspace(t *testing.T) {
	dir := testutil.ZenProfile(t)
	uuid := "{11111111-2222-3333-4444-555555555555}"

	if err := SetActiveWorkspace(dir, uuid); err != nil {
		t.Fatalf("SetActiveWorkspace: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "prefs.js"))
	if err != nil {
		t.Fatal(err)
	}
	want := `user_pref("zen.workspaces.active", "` + uuid + `")`
	if !strings.Contains(string(data), want) {
		t.Fatalf("prefs.js missing pref:\n%s", data)
	}

	// A second call replaces rather than appends.
	other := "{99999999-8888-7777-6666-555555555555}"
	if err := SetActiveWorkspace(dir, other); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "prefs.js"))
	if strings.Contains(string(data), uuid) {
		t.Error("old workspace uuid still present after replace")
	}

	got, err := ActiveWorkspace(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != other {
		t.Errorf("ActiveWorkspace = %q, want %q", got, other)
	}
}

func TestRetargetActiveWorkspace(t *testing.T) {
	dir := testutil.ZenProfile(t)
	temp := "{11111111-2222-3333-4444-555555555555}"
	final := "{99999999-8888-7777-6666-555555555555}"

	if err := SetActiveWorkspace(dir, temp); err != nil {
		t.Fatal(err)
	}

	// Active pointer followed the consolidated workspace.
	got, err := RetargetActiveWorkspace(dir, map[string]string{temp: final})
	if err != nil {
		t.Fatalf("RetargetActiveWorkspace: %v", err)
	}
	if got != final {
		t.Errorf("retargeted to %q, want %q", got, final)
	}
	if active, _ := ActiveWorkspace(dir); active != final {
		t.Errorf("prefs.js points at %q, want %q", active, final)
	}

	// A pointer outside the mapping is left alone.
	got, err = RetargetActiveWorkspace(dir, map[string]string{temp: final})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("second pass retargeted %q, want no change", got)
	}
	if active, _ := ActiveWorkspace(dir); active != final {
		t.Errorf("prefs.js points at %q after no-op pass", active)
	}
}
