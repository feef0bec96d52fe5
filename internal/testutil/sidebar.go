package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// SidebarFile writes a small but fully shaped StorableSidebar.json fixture
// and returns its path. It carries two spaces: "Personal" with a nested
// folder and an essential tab, and "Work" with a single pinned tab.
func SidebarFile(t *testing.T) string {
	t.Helper()

	tab := func(title, url string) map[string]any {
		return map[string]any{
			"title": title,
			"data":  map[string]any{"tab": map[string]any{"savedURL": url, "savedTitle": title}},
		}
	}
	container := func(containerType map[string]any, children ...string) map[string]any {
		return map[string]any{
			"childrenIds": children,
			"data": map[string]any{"itemContainer": map[string]any{
				"containerType": containerType,
			}},
		}
	}

	items := []any{
		"T1", tab("Docs", "https://docs.example.com"),
		"T2", tab("Chat", "https://chat.example.com"),
		"T3", tab("Mail", "https://mail.example.com"),
		"T4", tab("Board", "https://board.example.com"),
		"E1", tab("Calendar", "https://calendar.example.com"),
		"F1", map[string]any{
			"title":       "Project",
			"childrenIds": []string{"T2"},
			"data":        map[string]any{"list": map[string]any{}},
		},
		"c1111111-1111-4111-8111-111111111111", container(
			map[string]any{"spaceItems": map[string]any{}}, "T1", "F1", "T3"),
		"c2222222-2222-4222-8222-222222222222", container(
			map[string]any{"spaceItems": map[string]any{}}, "T4"),
		"c3333333-3333-4333-8333-333333333333", container(
			map[string]any{"topApps": map[string]any{"_0": map[string]any{"default": map[string]any{}}}}, "E1"),
	}
	spaces := []any{
		"S1", map[string]any{
			"title":        "Personal",
			"containerIDs": []string{"pinned", "c1111111-1111-4111-8111-111111111111", "unpinned"},
		},
		"S2", map[string]any{
			"title":        "Work",
			"containerIDs": []string{"unpinned", "c2222222-2222-4222-8222-222222222222"},
		},
	}

	doc := map[string]any{
		"sidebar": map[string]any{
			"containers": []any{
				map[string]any{},
				map[string]any{"items": items, "spaces": spaces},
			},
		},
		"firebaseSyncState": map[string]any{
			"syncData": map[string]any{"spaceModels": []any{}},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "StorableSidebar.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
