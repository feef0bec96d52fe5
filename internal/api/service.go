package api

import (
	"context"

	"github.com/starford/arczen/internal/migrate"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/zen"
)

// Service is what the review handlers need from the surrounding runtime. The
// runtime owns the store handle and the freshest sidebar document; the API
// layer only shapes requests and responses.
type Service interface {
	// Preview returns the current extraction of the watched sidebar document.
	Preview(ctx context.Context) ([]*sidebar.Space, []sidebar.SkippedItem, error)
	// Plan runs the import pipeline in dry-run mode.
	Plan(ctx context.Context) (*migrate.Result, error)
	// Workspaces lists the target store's workspaces.
	Workspaces(ctx context.Context) ([]zen.Workspace, error)
	// Consolidate applies a temporary → final workspace uuid mapping.
	Consolidate(ctx context.Context, mapping map[string]string) (*zen.ConsolidationResult, error)
}
