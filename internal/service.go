package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/arczen/internal/migrate"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/zen"
)

// MigrateOptions resolves the configuration into concrete pipeline options,
// filling empty paths with the platform defaults and looking the Zen profile
// up in profiles.ini.
func (c *Config) MigrateOptions() (migrate.Options, error) {
	opts := migrate.Options{
		SidebarPath:   c.Arc.SidebarPath,
		HistoryPath:   c.Arc.HistoryPath,
		MinVisitCount: c.Import.MinVisitCount,
		BackupDir:     c.Import.BackupDir,
		Bookmarks:     c.Import.Bookmarks,
		SetActive:     c.Import.SetActive,
	}
	if opts.SidebarPath == "" {
		path, err := sidebar.DefaultSidebarPath()
		if err != nil {
			return opts, err
		}
		opts.SidebarPath = path
	}

	root := c.Zen.Root
	if root == "" {
		var err error
		if root, err = zen.DefaultProfilesRoot(); err != nil {
			return opts, err
		}
	}
	profile, err := zen.FindProfile(root, c.Zen.Profile)
	if err != nil {
		return opts, err
	}
	opts.ProfileDir = profile.Dir
	return opts, nil
}

// ReviewService backs the review API and the MCP tools. It holds the freshest
// parsed sidebar document (updated by the file watcher) and opens the target
// store per request, so a running Zen instance only blocks the calls that
// actually write.
type ReviewService struct {
	opts   migrate.Options
	logger *slog.Logger

	mu  sync.RWMutex
	doc *sidebar.Document
}

// NewReviewService resolves the configured paths and returns a service ready
// to answer review calls.
func NewReviewService(cfg *Config, logger *slog.Logger) (*ReviewService, error) {
	opts, err := cfg.MigrateOptions()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	return &ReviewService{opts: opts, logger: logger}, nil
}

// Options returns the resolved pipeline options.
func (s *ReviewService) Options() migrate.Options { return s.opts }

// SetDocument replaces the cached sidebar document. Called by the watcher
// after each successful re-parse.
func (s *ReviewService) SetDocument(doc *sidebar.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *ReviewService) document() (*sidebar.Document, error) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}
	doc, err := sidebar.LoadFile(s.opts.SidebarPath)
	if err != nil {
		return nil, err
	}
	s.SetDocument(doc)
	return doc, nil
}

// Preview extracts the ordered space trees from the current document.
func (s *ReviewService) Preview(_ context.Context) ([]*sidebar.Space, []sidebar.SkippedItem, error) {
	doc, err := s.document()
	if err != nil {
		return nil, nil, err
	}
	return migrate.ExtractDocument(doc, s.opts.HistoryPath, s.logger)
}

// Plan runs the import pipeline in dry-run mode.
func (s *ReviewService) Plan(_ context.Context) (*migrate.Result, error) {
	opts := s.opts
	opts.DryRun = true
	return migrate.Run(opts, s.logger)
}

// Workspaces lists the target store's workspaces.
func (s *ReviewService) Workspaces(_ context.Context) ([]zen.Workspace, error) {
	store, err := zen.Open(zen.Profile{Dir: s.opts.ProfileDir}.PlacesPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Workspaces()
}

// Consolidate applies a temporary → final workspace uuid mapping.
func (s *ReviewService) Consolidate(_ context.Context, mapping map[string]string) (*zen.ConsolidationResult, error) {
	store, err := zen.Open(zen.Profile{Dir: s.opts.ProfileDir}.PlacesPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	res, err := store.Consolidate(mapping, s.logger)
	if err != nil {
		return nil, err
	}
	// The active-workspace pref may point at a temporary uuid the pass just
	// removed; follow it to the surviving one.
	if final, err := zen.RetargetActiveWorkspace(s.opts.ProfileDir, mapping); err != nil {
		s.logger.Warn("could not retarget active workspace", slog.String("error", err.Error()))
	} else if final != "" {
		s.logger.Info("active workspace retargeted", slog.String("workspace", final))
	}
	return res, nil
}
