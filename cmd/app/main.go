package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/gameplanhq/gameplan/internal"
	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/adapter/jira"
	"github.com/gameplanhq/gameplan/internal/adapter/misc"
	"github.com/gameplanhq/gameplan/internal/agenda"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/execrunner"
	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/mcpserver"
	"github.com/gameplanhq/gameplan/internal/scaffold"
	"github.com/gameplanhq/gameplan/internal/storage"
	gsync "github.com/gameplanhq/gameplan/internal/sync"
	pkgconfig "github.com/gameplanhq/gameplan/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "gameplan",
		Usage: "Local-first work tracking: mirror issues into markdown and keep a daily agenda",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Workspace directory",
				Value:   ".",
				Sources: cli.EnvVars("GAMEPLAN_DIR"),
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			syncCommand(),
			statusCommand(),
			itemsCommand(),
			archiveCommand(),
			agendaCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("gameplan error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// workspace resolves the --dir flag to an absolute path.
func workspace(cmd *cli.Command) (string, error) {
	abs, err := filepath.Abs(cmd.String("dir"))
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

// loadConfig loads gameplan.yaml from the workspace on top of defaults.
func loadConfig(baseDir string) (*internal.Config, error) {
	configPath := filepath.Join(baseDir, internal.ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run 'gameplan init' first)", apperr.ErrNotFound, configPath)
	}
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRegistry wires every known adapter. The registry is the only adapter
// table in the process; it is built here and passed down by reference.
func buildRegistry(cfg *internal.Config, store storage.Provider, runner execrunner.Runner) (*adapter.Registry, error) {
	reg := adapter.NewRegistry()
	if err := reg.Register(jira.New(cfg.Areas["jira"], runner)); err != nil {
		return nil, err
	}
	if err := reg.Register(misc.New(store)); err != nil {
		return nil, err
	}
	return reg, nil
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new gameplan workspace",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			created, err := scaffold.Init(dir)
			if err != nil {
				return err
			}
			fmt.Printf("✨ Initialized gameplan at %s\n\n", created)
			fmt.Println("📁 Created:")
			fmt.Println("   - gameplan.yaml (configuration)")
			fmt.Println("   - tracking/areas/jira/ (tracking files)")
			fmt.Println()
			fmt.Println("📋 Next steps:")
			fmt.Println("   1. Edit gameplan.yaml to add items to track")
			fmt.Println("   2. Run: gameplan agenda init")
			fmt.Println("   3. Run: gameplan sync (when adapters configured)")
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Pull tracked items from external systems into their README files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "area",
				Usage: "Sync a single area (e.g. jira)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(dir)
			if err != nil {
				return err
			}
			db, err := internal.OpenHistory(cfg, dir)
			if err != nil {
				return err
			}
			defer db.Close()

			reg, err := buildRegistry(cfg, store, execrunner.Exec{})
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			orch := gsync.New(reg, store, db, logger)

			var reports []*gsync.Report
			if area := cmd.String("area"); area != "" {
				areaCfg, ok := cfg.Areas[area]
				if !ok {
					return fmt.Errorf("%w: no %q area in gameplan.yaml", apperr.ErrConfig, area)
				}
				report, err := orch.SyncArea(ctx, area, areaCfg)
				if err != nil {
					return err
				}
				reports = append(reports, report)
			} else {
				reports = orch.SyncAll(ctx, cfg.Areas)
			}

			failed := 0
			for _, report := range reports {
				if report.Err != nil {
					fmt.Printf("%s: ✗ %v\n", report.Adapter, report.Err)
					failed++
					continue
				}
				fmt.Printf("%s: %d synced, %d failed\n", report.Adapter, report.Succeeded, report.Failed)
				for _, res := range report.Results {
					switch {
					case res.Err != nil:
						fmt.Printf("  ✗ %s: %v\n", res.ID, res.Err)
					case res.Changed:
						fmt.Printf("  ✓ %s: %s  🔔 updated since last sync\n", res.ID, res.Status)
					default:
						fmt.Printf("  ✓ %s: %s\n", res.ID, res.Status)
					}
				}
				failed += report.Failed
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("sync finished with %d failed item(s)", failed), 1)
			}
			fmt.Println("\n✓ Sync complete!")
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show tracked items and their last synced state",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			db, err := internal.OpenHistory(cfg, dir)
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := storage.NewFS(dir)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			if err := history.Reindex(db, store, logger); err != nil {
				return err
			}

			items, err := db.ListItems()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No tracked items yet. Add items to gameplan.yaml and run: gameplan sync")
				return nil
			}
			for _, it := range items {
				synced := "never"
				if !it.SyncedAt.IsZero() && it.SyncedAt.Year() > 1 {
					synced = it.SyncedAt.Format("2006-01-02 15:04")
				}
				fmt.Printf("%-6s %-20s %-14s synced %-17s %s\n", it.Adapter, it.ID, it.Status, synced, it.Title)
			}
			return nil
		},
	}
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "List configured item ids (markdown, suitable for agenda commands)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(dir)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg, store, execrunner.Exec{})
			if err != nil {
				return err
			}

			var lines []string
			for _, name := range reg.Names() {
				area, ok := cfg.Areas[name]
				if !ok {
					continue
				}
				ad, _ := reg.Get(name)
				items, err := ad.ParseConfig(area)
				if err != nil {
					return err
				}
				for _, item := range items {
					lines = append(lines, "- "+item.ID)
				}
			}
			if len(lines) == 0 {
				fmt.Println("_No tracked items_")
				return nil
			}
			fmt.Println(strings.Join(lines, "\n"))
			return nil
		},
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Move a tracked item's directory into the area's archive",
		ArgsUsage: "<adapter> <id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 2 {
				return fmt.Errorf("usage: gameplan archive <adapter> <id>")
			}
			adapterName, id := args.Get(0), args.Get(1)

			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(dir)
			if err != nil {
				return err
			}
			db, err := internal.OpenHistory(cfg, dir)
			if err != nil {
				return err
			}
			defer db.Close()

			itemDir, err := findItemDir(store, db, adapterName, id)
			if err != nil {
				return err
			}
			dest := path.Join("tracking", "areas", adapterName, "archive", path.Base(itemDir))
			if err := store.Move(itemDir, dest); err != nil {
				return err
			}
			if err := db.DeleteItem(adapterName, id); err != nil {
				return err
			}
			fmt.Printf("📦 Archived %s/%s → %s\n", adapterName, id, dest)
			return nil
		},
	}
}

// findItemDir locates an item's directory, preferring the indexed path and
// falling back to a scan for <id> or <id>-<slug> directory names.
func findItemDir(store storage.Provider, db *history.DB, adapterName, id string) (string, error) {
	if row, err := db.GetItem(adapterName, id); err == nil && row != nil && row.Path != "" {
		if store.Exists(row.Path) {
			return path.Dir(row.Path), nil
		}
	}

	areaDir := path.Join("tracking", "areas", adapterName)
	metas, err := store.List(areaDir)
	if err != nil {
		return "", fmt.Errorf("%w: item %s/%s", apperr.ErrNotFound, adapterName, id)
	}
	for _, m := range metas {
		d := path.Dir(m.Path)
		base := path.Base(d)
		if path.Dir(d) == areaDir && (base == id || strings.HasPrefix(base, id+"-")) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: item %s/%s", apperr.ErrNotFound, adapterName, id)
}

func agendaCommand() *cli.Command {
	newRenderer := func(cmd *cli.Command) (*agenda.Renderer, *internal.Config, error) {
		dir, err := workspace(cmd)
		if err != nil {
			return nil, nil, err
		}
		cfg, err := loadConfig(dir)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewFS(dir)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		return agenda.New(store, execrunner.Exec{}, dir, logger), cfg, nil
	}

	return &cli.Command{
		Name:  "agenda",
		Usage: "Manage the daily agenda",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create AGENDA.md from gameplan.yaml",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, cfg, err := newRenderer(cmd)
					if err != nil {
						return err
					}
					if len(cfg.Agenda.Sections) == 0 {
						return fmt.Errorf("%w: no 'agenda' section in gameplan.yaml", apperr.ErrConfig)
					}
					if err := r.Init(cfg.Agenda.Sections); err != nil {
						return err
					}
					fmt.Println("✅ Created AGENDA.md")
					fmt.Println()
					fmt.Println("📋 Next steps:")
					fmt.Println("   1. Edit AGENDA.md to add your focus items")
					fmt.Println("   2. Run: gameplan agenda refresh (to update command sections)")
					fmt.Println("   3. Run: gameplan agenda view (to display)")
					return nil
				},
			},
			{
				Name:  "view",
				Usage: "Print the current AGENDA.md",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, _, err := newRenderer(cmd)
					if err != nil {
						return err
					}
					content, err := r.View()
					if err != nil {
						return err
					}
					fmt.Print(content)
					return nil
				},
			},
			{
				Name:  "refresh",
				Usage: "Re-run command-driven sections in AGENDA.md",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, cfg, err := newRenderer(cmd)
					if err != nil {
						return err
					}
					if err := r.Refresh(ctx, cfg.Agenda.Sections); err != nil {
						return err
					}
					fmt.Println("✅ Refreshed AGENDA.md")
					return nil
				},
			},
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read-only HTTP API and keep the item index fresh",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			return internal.Run(ctx,
				internal.WithConfig(cfg),
				internal.WithBaseDir(dir),
			)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve gameplan tools over the Model Context Protocol (stdio)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := workspace(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(dir)
			if err != nil {
				return err
			}
			db, err := internal.OpenHistory(cfg, dir)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			if err := history.Reindex(db, store, logger); err != nil {
				logger.Warn("reindex failed", slog.String("error", err.Error()))
			}

			return mcpserver.New(store, db).ServeStdio()
		},
	}
}
