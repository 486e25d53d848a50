// Command complete is a demonstration CLI over the completion engine
// facade: open a file, ask for completions at a cursor location, and
// optionally refine against a query. Structured the way the teacher's
// cmd/lci/main.go wires urfave/cli flags to config loading.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/complete-engine/internal/config"
	"github.com/standardbeagle/complete-engine/internal/engine"
	"github.com/standardbeagle/complete-engine/internal/watch"
)

func main() {
	app := &cli.App{
		Name:                   "complete",
		Usage:                  "concurrent code-completion engine demo",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "project root containing .complete.kdl",
				Value:   ".",
			},
			&cli.IntFlag{
				Name:  "line",
				Usage: "1-based cursor line",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "column",
				Usage: "1-based cursor column",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "completion query; empty means cursor-position request",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "watch the project root and reparse on change (only when the config's watch block sets enabled)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	root := c.String("config")
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: complete [flags] <path>")
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Engine.ThreadingEnabledInitially = true

	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}
	defer eng.Dispose()

	if c.Bool("watch") && cfg.Watch.Enabled {
		roots := cfg.Watch.Roots
		if len(roots) == 0 {
			roots = []string{root}
		}
		w, err := watch.New(eng, roots, cfg.Watch.GlobPattern, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		w.Start()
		defer w.Stop()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := eng.UpdateTranslationUnit(absPath, nil); err != nil {
		return fmt.Errorf("update translation unit: %w", err)
	}

	query := c.String("query")
	line, column := c.Int("line"), c.Int("column")

	if query != "" {
		// A refinement query ranks against the snapshot published by a
		// cursor-position request, so issue one first.
		if _, ok := eng.CandidatesForQueryAndLocationAsync("", absPath, line, column, nil).Get(); !ok {
			return fmt.Errorf("completion was cancelled")
		}
	}

	future := eng.CandidatesForQueryAndLocationAsync(query, absPath, line, column, nil)
	results, ok := future.Get()
	if !ok {
		return fmt.Errorf("completion was cancelled")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
