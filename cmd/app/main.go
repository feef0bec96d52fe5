package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/arczen/internal"
	"github.com/starford/arczen/internal/mcpserver"
	"github.com/starford/arczen/internal/migrate"
	"github.com/starford/arczen/internal/zen"
	pkgconfig "github.com/starford/arczen/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, *slog.Logger, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("sidebar") {
		cfg.Arc.SidebarPath = cmd.String("sidebar")
	}
	if cmd.IsSet("history") {
		cfg.Arc.HistoryPath = cmd.String("history")
	}
	if cmd.IsSet("profile") {
		cfg.Zen.Profile = cmd.String("profile")
	}
	if cmd.IsSet("min-visit-count") {
		cfg.Import.MinVisitCount = int(cmd.Int("min-visit-count"))
	}
	if cmd.IsSet("backup-dir") {
		cfg.Import.BackupDir = cmd.String("backup-dir")
	}
	if cmd.Bool("no-bookmarks") {
		cfg.Import.Bookmarks = false
	}
	if cmd.Bool("no-set-active") {
		cfg.Import.SetActive = false
	}

	opts, err := cfg.MigrateOptions()
	if err != nil {
		return err
	}
	opts.DryRun = cmd.Bool("dry-run")

	result, err := migrate.Run(opts, logger)
	if result != nil {
		if printErr := printJSON(result); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		return err
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d spaces failed", len(result.Failures), len(result.Spaces))
	}
	return nil
}

func openStore(cfg *internal.Config) (*zen.Store, string, error) {
	opts, err := cfg.MigrateOptions()
	if err != nil {
		return nil, "", err
	}
	store, err := zen.Open(zen.Profile{Dir: opts.ProfileDir}.PlacesPath())
	return store, opts.ProfileDir, err
}

func runConsolidate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mapping, err := zen.LoadMapping(cmd.String("mapping"))
	if err != nil {
		return err
	}
	store, profileDir, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Consolidate(mapping, logger)
	if err != nil {
		return err
	}
	// The active-workspace pref may point at a temporary uuid the pass just
	// removed; follow it to the surviving one.
	if final, err := zen.RetargetActiveWorkspace(profileDir, mapping); err != nil {
		logger.Warn("could not retarget active workspace", slog.String("error", err.Error()))
	} else if final != "" {
		logger.Info("active workspace retargeted", slog.String("workspace", final))
	}
	return printJSON(result)
}

func runReset(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Reset(logger)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runReview(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Stdout carries the MCP transport, so logs go to stderr here.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, err := internal.NewReviewService(cfg, logger)
	if err != nil {
		return err
	}
	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "arczen",
		Usage: "Migrate Arc browser spaces, folders and pinned tabs into Zen workspaces",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Import Arc spaces into the Zen profile",
				Action: runMigrate,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report the write set without touching the database",
					},
					&cli.StringFlag{
						Name:  "sidebar",
						Usage: "Path to Arc's StorableSidebar.json",
					},
					&cli.StringFlag{
						Name:  "history",
						Usage: "Path to Arc's History database for visit counts",
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "Zen profile name (default profile when empty)",
					},
					&cli.IntFlag{
						Name:  "min-visit-count",
						Usage: "Skip bookmark projection for tabs below this visit count",
					},
					&cli.StringFlag{
						Name:  "backup-dir",
						Usage: "Directory for the pre-import places.sqlite backup",
					},
					&cli.BoolFlag{
						Name:  "no-bookmarks",
						Usage: "Skip the moz_bookmarks projection",
					},
					&cli.BoolFlag{
						Name:  "no-set-active",
						Usage: "Do not point prefs.js at the first imported workspace",
					},
				},
			},
			{
				Name:   "consolidate",
				Usage:  "Re-point imported pins from temporary to final workspace uuids",
				Action: runConsolidate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mapping",
						Usage:    "YAML file mapping temporary workspace uuids to final ones",
						Required: true,
					},
				},
			},
			{
				Name:   "reset",
				Usage:  "Remove everything a previous import created",
				Action: runReset,
			},
			{
				Name:   "review",
				Usage:  "Serve the review API with live sidebar reload events",
				Action: runReview,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the migration tools over MCP on stdin/stdout",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
