// Package migrate orchestrates the full pipeline: extract the ordered space
// trees from Arc's sidebar document, then import them into a Zen profile with
// per-space failure containment.
package migrate

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/arczen/internal/apperr"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/zen"
)

// Options configure one pipeline run.
type Options struct {
	SidebarPath   string
	HistoryPath   string // optional Arc History db for visit counts
	ProfileDir    string // Zen profile directory
	DryRun        bool
	MinVisitCount int
	BackupDir     string
	Bookmarks     bool // also project the moz_bookmarks backup
	SetActive     bool // point prefs.js at the first imported workspace
}

// Result is the structured report of one run. Dry-run and real runs produce
// the same shape with the same counts, so the two are diffable.
type Result struct {
	DryRun     bool                  `json:"dry_run"`
	BackupPath string                `json:"backup_path,omitempty"`
	Spaces     []*zen.SpaceResult    `json:"spaces"`
	Bookmarks  *zen.BookmarkResult   `json:"bookmarks,omitempty"`
	Extraction []sidebar.SkippedItem `json:"extraction_skipped,omitempty"`
	Failures   []*apperr.SpaceError  `json:"failures,omitempty"`
	Mapping    zen.RunMapping        `json:"-"`
}

// Totals sums the created entities across all spaces.
func (r *Result) Totals() (workspaces, folders, pins int) {
	for _, s := range r.Spaces {
		workspaces += s.WorkspacesCreated
		folders += s.FoldersCreated
		pins += s.PinsCreated
	}
	return workspaces, folders, pins
}

// Extract loads the sidebar document and rebuilds every space's ordered tree,
// including the flat essential-tab pass and optional visit counts from an Arc
// History database.
func Extract(sidebarPath, historyPath string, logger *slog.Logger) ([]*sidebar.Space, []sidebar.SkippedItem, error) {
	doc, err := sidebar.LoadFile(sidebarPath)
	if err != nil {
		return nil, nil, err
	}
	return ExtractDocument(doc, historyPath, logger)
}

// ExtractDocument is Extract for an already-parsed document (the watcher and
// review surfaces reuse it).
func ExtractDocument(doc *sidebar.Document, historyPath string, logger *slog.Logger) ([]*sidebar.Space, []sidebar.SkippedItem, error) {
	var (
		spaces  []*sidebar.Space
		skipped []sidebar.SkippedItem
	)
	for _, rec := range doc.Spaces() {
		space, sk := sidebar.BuildTree(rec, doc, logger)
		spaces = append(spaces, space)
		skipped = append(skipped, sk...)
	}
	skipped = append(skipped, sidebar.AttachEssentials(doc, spaces, logger)...)

	if historyPath != "" {
		stats, err := sidebar.LoadVisitStats(historyPath, logger)
		if err != nil {
			return nil, nil, err
		}
		stats.Apply(spaces)
	}
	return spaces, skipped, nil
}

// Run executes the pipeline. A malformed document halts everything before any
// write; a failure inside one space rolls back that space only, and the run
// completes the remaining spaces and reports the failures in the result.
func Run(opts Options, logger *slog.Logger) (*Result, error) {
	spaces, extractionSkipped, err := Extract(opts.SidebarPath, opts.HistoryPath, logger)
	if err != nil {
		return nil, fmt.Errorf("migrate: extract: %w", err)
	}
	res := &Result{DryRun: opts.DryRun, Extraction: extractionSkipped}

	store, err := zen.Open(filepath.Join(opts.ProfileDir, "places.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer store.Close()
	if err := store.VerifySchema(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	containers, err := zen.AssignContainers(opts.ProfileDir, spaces, opts.DryRun, logger)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	importer := zen.NewImporter(store, logger, zen.Options{
		DryRun:        opts.DryRun,
		MinVisitCount: opts.MinVisitCount,
		BackupDir:     opts.BackupDir,
		Containers:    containers,
	})

	var imported []*sidebar.Space
	for _, space := range spaces {
		spaceRes, err := importer.ImportSpace(space)
		res.Spaces = append(res.Spaces, spaceRes)
		if err != nil {
			se := &apperr.SpaceError{SpaceID: space.ID, SpaceName: space.Name, Err: err}
			res.Failures = append(res.Failures, se)
			logger.Error("migrate: space failed, continuing",
				slog.String("space", space.Name),
				slog.String("error", err.Error()))
			continue
		}
		imported = append(imported, space)
	}
	res.BackupPath = importer.BackupPath()
	res.Mapping = importer.Mapping()

	if opts.Bookmarks {
		bm, err := importer.ProjectBookmarks(imported)
		if err != nil {
			return res, fmt.Errorf("migrate: bookmarks: %w", err)
		}
		res.Bookmarks = bm
	}

	if opts.SetActive && !opts.DryRun {
		if err := setFirstActive(opts.ProfileDir, imported, res.Mapping); err != nil {
			logger.Warn("migrate: could not set active workspace", slog.String("error", err.Error()))
		}
	}

	workspaces, folders, pins := res.Totals()
	logger.Info("migrate: run complete",
		slog.Bool("dry_run", opts.DryRun),
		slog.Int("workspaces", workspaces),
		slog.Int("folders", folders),
		slog.Int("pins", pins),
		slog.Int("failures", len(res.Failures)))
	return res, nil
}

func setFirstActive(profileDir string, spaces []*sidebar.Space, mapping zen.RunMapping) error {
	for _, s := range spaces {
		if ws, ok := mapping.Workspaces[s.ID]; ok {
			return zen.SetActiveWorkspace(profileDir, ws)
		}
	}
	return errors.New("migrate: no imported workspace to activate")
}
