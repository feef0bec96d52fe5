package sidebar

import (
	"log/slog"

	"github.com/starford/arczen/internal/apperr"
)

// BuildTree reconstructs one space's ordered content from the document.
// Children are visited in the order returned by ResolveOrder; folders recurse
// into their own childrenIds (a folder is itself a container and uses the
// same ordering field). Positions are assigned sequentially from 0 within
// each container.
//
// The walk carries the set of ids on the active recursion path; an id about
// to be re-entered is truncated to a leaf and reported as skipped instead of
// looping. Unknown kinds are skipped, never fatal.
func BuildTree(rec SpaceRecord, doc *Document, logger *slog.Logger) (*Space, []SkippedItem) {
	b := &treeBuilder{
		doc:    doc,
		logger: logger,
		space: &Space{
			ID:      rec.ID,
			Name:    rec.Name,
			Icon:    rec.Icon,
			Color:   rec.Color,
			Profile: rec.Profile,
		},
		onPath: make(map[string]struct{}),
	}

	order := ResolveOrder(rec, doc, logger)
	b.walk(order, "")

	logger.Debug("tree: built space",
		slog.String("space", rec.Name),
		slog.Int("tabs", len(b.space.Tabs)),
		slog.Int("folders", len(b.space.Folders)),
		slog.Int("skipped", len(b.skipped)))
	return b.space, b.skipped
}

type treeBuilder struct {
	doc     *Document
	logger  *slog.Logger
	space   *Space
	onPath  map[string]struct{}
	skipped []SkippedItem
}

// walk processes one container's ordered children. parentFolder is the id of
// the enclosing folder, empty at space root.
func (b *treeBuilder) walk(childIDs []string, parentFolder string) {
	pos := 0
	for _, id := range childIDs {
		item, ok := b.doc.Item(id)
		if !ok {
			b.skip(id, apperr.SkipMissingItem)
			continue
		}

		switch item.Kind() {
		case KindTab:
			if item.Data.Tab.SavedURL == "" {
				b.skip(id, apperr.SkipNoURL)
				continue
			}
			b.space.Tabs = append(b.space.Tabs, &Tab{
				ID:         id,
				Title:      item.DisplayTitle(),
				URL:        item.Data.Tab.SavedURL,
				SpaceID:    b.space.ID,
				FolderID:   parentFolder,
				Position:   pos,
				VisitCount: 1,
			})
			pos++

		case KindFolder:
			if _, active := b.onPath[id]; active {
				// A descendant pointed back at an ancestor. The
				// ancestor occurrence stays (possibly as an empty
				// folder); this occurrence is truncated so the
				// walk cannot loop.
				b.skip(id, apperr.SkipCycleTruncated)
				continue
			}
			b.space.Folders = append(b.space.Folders, &Folder{
				ID:             id,
				Name:           item.DisplayTitle(),
				ParentFolderID: parentFolder,
				Position:       pos,
				Children:       item.ChildrenIDs,
			})
			pos++

			b.onPath[id] = struct{}{}
			b.walk(item.ChildrenIDs, id)
			delete(b.onPath, id)

		default:
			b.skip(id, apperr.SkipUnknownKind)
		}
	}
}

func (b *treeBuilder) skip(id, reason string) {
	b.skipped = append(b.skipped, SkippedItem{ID: id, Reason: reason})
	b.logger.Debug("tree: skipped item", slog.String("id", id), slog.String("reason", reason))
}

// AttachEssentials runs the flat essential-tab pass: topApps containers are
// matched to spaces by profile directory basename (not by positional
// containment) and their tabs appended to the matching space, tagged
// essential. Tabs whose profile matches no space are reported as skipped and
// dropped.
func AttachEssentials(doc *Document, spaces []*Space, logger *slog.Logger) []SkippedItem {
	byProfile := make(map[string]*Space)
	for _, s := range spaces {
		if s.Profile != "" {
			byProfile[s.Profile] = s
		}
	}

	var skipped []SkippedItem
	for id, item := range doc.Items() {
		profile, ok := item.TopAppsProfile()
		if !ok {
			continue
		}
		target := byProfile[profile]
		for idx, childID := range item.ChildrenIDs {
			child, found := doc.Item(childID)
			if !found || child.Data.Tab == nil || child.Data.Tab.SavedURL == "" {
				skipped = append(skipped, SkippedItem{ID: childID, Reason: apperr.SkipNoURL})
				continue
			}
			if target == nil {
				skipped = append(skipped, SkippedItem{ID: childID, Reason: apperr.SkipOrphanedEssential})
				logger.Info("essentials: dropping orphaned tab",
					slog.String("profile", profile),
					slog.String("title", child.DisplayTitle()))
				continue
			}
			target.Tabs = append(target.Tabs, &Tab{
				ID:          childID,
				Title:       child.DisplayTitle(),
				URL:         child.Data.Tab.SavedURL,
				SpaceID:     target.ID,
				Position:    idx,
				IsEssential: true,
				VisitCount:  1,
			})
		}
		logger.Debug("essentials: processed container",
			slog.String("container", id),
			slog.String("profile", profile),
			slog.Int("tabs", len(item.ChildrenIDs)))
	}
	return skipped
}
