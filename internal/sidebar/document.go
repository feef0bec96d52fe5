// Package sidebar reads Arc's StorableSidebar.json and rebuilds the ordered
// space → folder → tab hierarchy it encodes. The document is graph-shaped:
// items live in a flat id-keyed table, containment comes from ordered
// childrenIds lists, and each space points at its root containers through a
// containerIDs list mixing sentinel names with real container ids.
package sidebar

import (
	"encoding/json"
	"fmt"

	"github.com/starford/arczen/internal/apperr"
)

// Item kinds as classified from the data section.
const (
	KindTab       = "tab"
	KindFolder    = "folder"
	KindContainer = "container"
	KindOther     = "other"
)

// Item is one record from the sidebar item table. ParentID is informational
// only; display order always comes from a parent's ChildrenIDs.
type Item struct {
	ID          string   `json:"-"`
	Title       string   `json:"title"`
	ParentID    string   `json:"parentID"`
	ChildrenIDs []string `json:"childrenIds"`
	Data        ItemData `json:"data"`
}

// ItemData discriminates the item kind. Exactly one of the pointers is set
// for well-formed items.
type ItemData struct {
	Tab           *TabData        `json:"tab,omitempty"`
	List          json.RawMessage `json:"list,omitempty"`
	ItemContainer *ItemContainer  `json:"itemContainer,omitempty"`
}

// TabData is the tab payload of an item.
type TabData struct {
	SavedURL   string `json:"savedURL"`
	SavedTitle string `json:"savedTitle"`
}

// ItemContainer marks structural containers (space roots, topApps strips).
type ItemContainer struct {
	ContainerType map[string]json.RawMessage `json:"containerType"`
}

// Kind classifies the item by its data section.
func (it *Item) Kind() string {
	switch {
	case it.Data.Tab != nil:
		return KindTab
	case it.Data.List != nil:
		return KindFolder
	case it.Data.ItemContainer != nil:
		return KindContainer
	default:
		return KindOther
	}
}

// DisplayTitle returns the item title, falling back to the tab's saved title.
func (it *Item) DisplayTitle() string {
	if it.Title != "" {
		return it.Title
	}
	if it.Data.Tab != nil && it.Data.Tab.SavedTitle != "" {
		return it.Data.Tab.SavedTitle
	}
	return "Untitled"
}

// TopAppsProfile returns the profile directory basename of a topApps
// (essential tab) container, and whether the item is one. Containers on the
// default profile report "Default".
func (it *Item) TopAppsProfile() (string, bool) {
	if it.Data.ItemContainer == nil {
		return "", false
	}
	raw, ok := it.Data.ItemContainer.ContainerType["topApps"]
	if !ok {
		return "", false
	}
	var payload struct {
		Zero struct {
			Custom *struct {
				Zero struct {
					DirectoryBasename string `json:"directoryBasename"`
				} `json:"_0"`
			} `json:"custom"`
			Default json.RawMessage `json:"default"`
		} `json:"_0"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", true
	}
	if payload.Zero.Custom != nil && payload.Zero.Custom.Zero.DirectoryBasename != "" {
		return payload.Zero.Custom.Zero.DirectoryBasename, true
	}
	return "Default", true
}

// SpaceRecord is a space's sidebar entry merged with its sync-section
// metadata. ContainerIDs keeps the original order: sentinel strings
// ("pinned", "unpinned") interleaved with real container ids.
type SpaceRecord struct {
	ID           string
	Name         string
	Icon         string
	Color        *Color
	Profile      string
	ContainerIDs []string
}

// Document is the parsed sidebar: ordered space records plus the flat item
// index. Read-only after ParseDocument.
type Document struct {
	spaces []SpaceRecord
	items  map[string]*Item
}

// Spaces returns the space records in sidebar display order.
func (d *Document) Spaces() []SpaceRecord { return d.spaces }

// Item looks up an item record by id.
func (d *Document) Item(id string) (*Item, bool) {
	it, ok := d.items[id]
	return it, ok
}

// Items returns the full id → item index.
func (d *Document) Items() map[string]*Item { return d.items }

type rawDocument struct {
	Sidebar *struct {
		Containers []json.RawMessage `json:"containers"`
	} `json:"sidebar"`
	FirebaseSyncState struct {
		SyncData struct {
			SpaceModels []json.RawMessage `json:"spaceModels"`
		} `json:"syncData"`
	} `json:"firebaseSyncState"`
}

type rawSidebarContainer struct {
	Items  []json.RawMessage `json:"items"`
	Spaces []json.RawMessage `json:"spaces"`
}

type rawSpaceEntry struct {
	Title        string   `json:"title"`
	ContainerIDs []string `json:"containerIDs"`
}

type rawSpaceModel struct {
	Value struct {
		Title      string `json:"title"`
		CustomInfo struct {
			IconType struct {
				Emoji string `json:"emoji_v2"`
			} `json:"iconType"`
			WindowTheme struct {
				PrimaryColorPalette struct {
					MidTone *struct {
						Red   *float64 `json:"red"`
						Green *float64 `json:"green"`
						Blue  *float64 `json:"blue"`
					} `json:"midTone"`
				} `json:"primaryColorPalette"`
			} `json:"windowTheme"`
		} `json:"customInfo"`
		Profile struct {
			Custom *struct {
				Zero struct {
					DirectoryBasename string `json:"directoryBasename"`
				} `json:"_0"`
			} `json:"custom"`
		} `json:"profile"`
	} `json:"value"`
}

// ParseDocument decodes StorableSidebar.json into a Document. The sidebar
// containers section is required; a document without it (or with items that
// are not an id/value pair list) is apperr.ErrMalformedDocument.
func ParseDocument(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedDocument, err)
	}
	if raw.Sidebar == nil || len(raw.Sidebar.Containers) < 2 {
		return nil, fmt.Errorf("%w: missing sidebar containers section", apperr.ErrMalformedDocument)
	}

	// The second container holds the local sidebar state (the first is
	// global chrome). Its items and spaces arrays alternate id, value.
	var local rawSidebarContainer
	if err := json.Unmarshal(raw.Sidebar.Containers[1], &local); err != nil {
		return nil, fmt.Errorf("%w: local container: %v", apperr.ErrMalformedDocument, err)
	}
	if local.Items == nil {
		return nil, fmt.Errorf("%w: local container has no item table", apperr.ErrMalformedDocument)
	}

	items := make(map[string]*Item)
	if err := forEachPair(local.Items, func(id string, value json.RawMessage) error {
		it := &Item{ID: id}
		if err := json.Unmarshal(value, it); err != nil {
			return fmt.Errorf("item %s: %v", id, err)
		}
		items[id] = it
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedDocument, err)
	}

	// Space metadata (name fallback, icon, color, profile) lives in the
	// sync section, also as an id/value pair list.
	meta := make(map[string]rawSpaceModel)
	_ = forEachPair(raw.FirebaseSyncState.SyncData.SpaceModels, func(id string, value json.RawMessage) error {
		var m rawSpaceModel
		if err := json.Unmarshal(value, &m); err == nil {
			meta[id] = m
		}
		return nil
	})

	var spaces []SpaceRecord
	if err := forEachPair(local.Spaces, func(id string, value json.RawMessage) error {
		var entry rawSpaceEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("space %s: %v", id, err)
		}
		spaces = append(spaces, buildSpaceRecord(id, entry, meta[id]))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedDocument, err)
	}

	return &Document{spaces: spaces, items: items}, nil
}

func buildSpaceRecord(id string, entry rawSpaceEntry, m rawSpaceModel) SpaceRecord {
	rec := SpaceRecord{
		ID:           id,
		Name:         entry.Title,
		ContainerIDs: entry.ContainerIDs,
	}
	if rec.Name == "" {
		rec.Name = m.Value.Title
	}
	if rec.Name == "" {
		rec.Name = "Space " + id
	}
	rec.Icon = m.Value.CustomInfo.IconType.Emoji
	if mt := m.Value.CustomInfo.WindowTheme.PrimaryColorPalette.MidTone; mt != nil &&
		mt.Red != nil && mt.Green != nil && mt.Blue != nil {
		rec.Color = &Color{R: clamp01(*mt.Red), G: clamp01(*mt.Green), B: clamp01(*mt.Blue)}
	}
	if c := m.Value.Profile.Custom; c != nil {
		rec.Profile = c.Zero.DirectoryBasename
	}
	// The Personal space runs on the default browser profile without an
	// explicit basename.
	if rec.Profile == "" && rec.Name == "Personal" {
		rec.Profile = "Default"
	}
	return rec
}

// forEachPair walks a JSON array that alternates string ids and value
// objects, calling fn for each complete pair. Entries that are not a string
// where an id is expected are skipped, matching how Arc pads these arrays.
func forEachPair(entries []json.RawMessage, fn func(id string, value json.RawMessage) error) error {
	for i := 0; i < len(entries); i++ {
		var id string
		if err := json.Unmarshal(entries[i], &id); err != nil {
			continue
		}
		if i+1 >= len(entries) {
			return nil
		}
		if err := fn(id, entries[i+1]); err != nil {
			return err
		}
		i++
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
