// Package apperr defines the error taxonomy shared by the extraction and
// import layers. Sentinels are matched with errors.Is; SpaceError carries
// per-space failure context through the pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument means the sidebar document is structurally
	// invalid. Fatal for the whole run; nothing partial is produced.
	ErrMalformedDocument = errors.New("malformed sidebar document")

	// ErrUnresolvedDependency means an identifier mapping was missing at
	// write time. Fatal for the current space's transaction only.
	ErrUnresolvedDependency = errors.New("unresolved identifier dependency")

	// ErrInvalidOrdering means position values within a container were not
	// contiguous from zero. Recovered locally by stable renumbering.
	ErrInvalidOrdering = errors.New("non-contiguous position ordering")

	// ErrConsolidation means the temporary-to-final identifier rewrite
	// failed and was rolled back; temporary ids remain authoritative.
	ErrConsolidation = errors.New("workspace consolidation failed")

	// ErrStoreLocked means the target database is held by another process
	// (usually a running Zen instance).
	ErrStoreLocked = errors.New("target store is locked")

	ErrNotFound = errors.New("not found")
)

// SpaceError wraps a store-level failure with the space it belongs to, so the
// pipeline can contain it to that space and continue with the rest.
type SpaceError struct {
	SpaceID   string
	SpaceName string
	Err       error
}

func (e *SpaceError) Error() string {
	return fmt.Sprintf("space %q: %v", e.SpaceName, e.Err)
}

func (e *SpaceError) Unwrap() error { return e.Err }

// Skip reasons reported for items excluded from the import.
const (
	SkipUnknownKind       = "unknown-kind"
	SkipCycleTruncated    = "cycle-truncated"
	SkipMissingItem       = "missing-item"
	SkipNoURL             = "no-url"
	SkipOrphanedEssential = "orphaned-essential"
	SkipDuplicate         = "already-imported"
	SkipBelowVisitCount   = "below-min-visits"
)
