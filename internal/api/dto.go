package api

import (
	"github.com/starford/arczen/internal/migrate"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/zen"
)

// PreviewResponse is the current extraction of the sidebar document: every
// space's ordered tree plus the items the extraction had to skip.
type PreviewResponse struct {
	Spaces  []*sidebar.Space      `json:"spaces"`
	Skipped []sidebar.SkippedItem `json:"skipped,omitempty"`
}

// PlanResponse wraps a dry-run result: the exact write set a real import
// would produce.
type PlanResponse struct {
	Plan *migrate.Result `json:"plan"`
}

// WorkspacesResponse lists the target store's workspaces.
type WorkspacesResponse struct {
	Workspaces []zen.Workspace `json:"workspaces"`
}

// ConsolidateRequest is the request body for a consolidation pass: temporary
// workspace uuid → desired final workspace uuid.
type ConsolidateRequest struct {
	Workspaces map[string]string `json:"workspaces"`
}

// ConsolidateResponse reports the consolidation outcome.
type ConsolidateResponse struct {
	Result *zen.ConsolidationResult `json:"result"`
}
