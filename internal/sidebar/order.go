package sidebar

import (
	"log/slog"

	"github.com/google/uuid"
)

// Sentinel container names that mark logical buckets rather than real
// ordering records.
const (
	sentinelPinned   = "pinned"
	sentinelUnpinned = "unpinned"
)

// ResolveOrder determines the authoritative display order for a space's
// pinned content. It walks the space's containerIDs in the order given,
// skips sentinel names and anything not shaped like a UUID, and returns the
// childrenIds of the first referenced container that has a non-empty list.
// First match wins; later candidates are never inspected for ordering.
//
// A space with no resolvable container yields an empty order, which is a
// valid state (an empty space), not an error.
func ResolveOrder(space SpaceRecord, doc *Document, logger *slog.Logger) []string {
	var order []string
	for _, cid := range space.ContainerIDs {
		if isSentinel(cid) {
			continue
		}
		item, ok := doc.Item(cid)
		if !ok || len(item.ChildrenIDs) == 0 {
			continue
		}
		if order == nil {
			order = item.ChildrenIDs
			continue
		}
		// The format is only empirically understood: at most one
		// container per space is expected to carry the order. Surface
		// any extra non-empty candidate so the assumption stays
		// observable.
		logger.Debug("order: ignoring secondary candidate container",
			slog.String("space", space.ID),
			slog.String("container", cid),
			slog.Int("children", len(item.ChildrenIDs)))
	}
	return order
}

// isSentinel reports whether a containerIDs entry is a logical bucket name.
// Real ordering containers are keyed by UUID-shaped ids; anything else is
// treated as a sentinel.
func isSentinel(id string) bool {
	if id == sentinelPinned || id == sentinelUnpinned {
		return true
	}
	_, err := uuid.Parse(id)
	return err != nil
}
