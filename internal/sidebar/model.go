package sidebar

import "fmt"

// Color is an RGB triple in the 0–1 range, as stored in Arc's window theme.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Space is the intermediate representation of one Arc space: its metadata
// plus the fully ordered folder/tab content recovered from the sidebar
// document. It is built once per run and never mutated afterwards.
type Space struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Icon    string    `json:"icon,omitempty"`
	Color   *Color    `json:"color,omitempty"`
	Profile string    `json:"profile,omitempty"`
	Folders []*Folder `json:"folders"`
	Tabs    []*Tab    `json:"tabs"`
}

// Folder is owned by exactly one parent: either another folder
// (ParentFolderID set) or the space root (ParentFolderID empty).
type Folder struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ParentFolderID string   `json:"parent_folder_id,omitempty"`
	Position       int      `json:"position"`
	Children       []string `json:"children"`
}

// Tab is a pinned tab. FolderID empty means the tab sits directly under the
// space. Position is the 0-based index within its container.
type Tab struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	SpaceID     string `json:"space_id"`
	FolderID    string `json:"folder_id,omitempty"`
	Position    int    `json:"position"`
	IsEssential bool   `json:"is_essential"`
	VisitCount  int    `json:"visit_count"`
}

// SkippedItem records an item excluded during tree building, with one of the
// apperr.Skip* reasons.
type SkippedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Validate checks the internal reference invariants of the space: every tab's
// FolderID and every folder's ParentFolderID must name a folder in this same
// space. A violation is a bug in the tree builder, so this is only called
// from tests.
func (s *Space) Validate() error {
	folders := make(map[string]struct{}, len(s.Folders))
	for _, f := range s.Folders {
		folders[f.ID] = struct{}{}
	}
	for _, f := range s.Folders {
		if f.ParentFolderID != "" {
			if _, ok := folders[f.ParentFolderID]; !ok {
				return fmt.Errorf("sidebar: folder %s references unknown parent %s", f.ID, f.ParentFolderID)
			}
		}
	}
	for _, t := range s.Tabs {
		if t.FolderID != "" {
			if _, ok := folders[t.FolderID]; !ok {
				return fmt.Errorf("sidebar: tab %s references unknown folder %s", t.ID, t.FolderID)
			}
		}
	}
	return nil
}

// Folder returns the folder with the given id, or nil.
func (s *Space) Folder(id string) *Folder {
	for _, f := range s.Folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}
