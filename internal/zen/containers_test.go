package zen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/testutil"
)

func TestAssignContainers(t *testing.T) {
	dir := t.TempDir()
	spaces := []*sidebar.Space{
		{ID: "S1", Name: "Personal"},
		{ID: "S2", Name: "Work"},
	}

	got, err := AssignContainers(dir, spaces, false, testutil.Logger())
	if err != nil {
		t.Fatalf("AssignContainers: %v", err)
	}
	// "Personal" matches the built-in user-context-personal identity.
	if got["S1"] != 1 {
		t.Errorf("Personal context = %d, want 1", got["S1"])
	}
	if got["S2"] != 2 {
		t.Errorf("Work context = %d, want 2", got["S2"])
	}

	data, err := os.ReadFile(filepath.Join(dir, "containers.json"))
	if err != nil {
		t.Fatalf("containers.json not written: %v", err)
	}
	var cfg containerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.LastUserContextID != 2 || len(cfg.Identities) != 2 {
		t.Errorf("config = %+v", cfg)
	}

	// Re-running reuses the identities instead of multiplying them.
	again, err := AssignContainers(dir, spaces, false, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if again["S2"] != got["S2"] {
		t.Errorf("re-run assigned %d, want stable %d", again["S2"], got["S2"])
	}
}

func TestAssignContainers_DryRun(t *testing.T) {
	dir := t.TempDir()
	spaces := []*sidebar.Space{{ID: "S1", Name: "Work"}}

	got, err := AssignContainers(dir, spaces, true, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if got["S1"] != 2 {
		t.Errorf("simulated context = %d, want 2", got["S1"])
	}
	if _, err := os.Stat(filepath.Join(dir, "containers.json")); !os.IsNotExist(err) {
		t.Error("dry run wrote containers.json")
	}
}
