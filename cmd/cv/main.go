package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/conceptweave/pkg/config"
	"github.com/vanderheijden86/conceptweave/pkg/debug"
	"github.com/vanderheijden86/conceptweave/pkg/export"
	"github.com/vanderheijden86/conceptweave/pkg/graph"
	"github.com/vanderheijden86/conceptweave/pkg/insight"
	"github.com/vanderheijden86/conceptweave/pkg/layout"
	"github.com/vanderheijden86/conceptweave/pkg/loader"
	"github.com/vanderheijden86/conceptweave/pkg/render"
	"github.com/vanderheijden86/conceptweave/pkg/store"
	"github.com/vanderheijden86/conceptweave/pkg/ui"
	"github.com/vanderheijden86/conceptweave/pkg/version"
	"github.com/vanderheijden86/conceptweave/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	exportFlag := flag.String("export", "", "Export without opening the TUI: outline, flashcards, study-guide, all, or wizard")
	outFlag := flag.String("out", "", "Output path for --export (directory when exporting all formats)")
	snapshotFlag := flag.String("snapshot", "", "Write an SVG snapshot of the settled layout to this path and exit")
	storeFlag := flag.String("store", "", "Path to the project database (default: XDG data dir)")
	noWatchFlag := flag.Bool("no-watch", false, "Disable project file hot-reload")
	flag.Parse()

	if *help {
		fmt.Println("Usage: cv [options] <project.json>")
		fmt.Println("\nA concept graph viewer for extracted study material.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("cv %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	projectPath := flag.Arg(0)
	if projectPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no project file given")
		fmt.Fprintln(os.Stderr, "Usage: cv [options] <project.json>")
		os.Exit(1)
	}
	// Registered project names resolve to their configured path.
	if p := cfg.FindProject(projectPath); p != nil {
		projectPath = p.ResolvedPath()
	}

	if *exportFlag != "" {
		if err := runExport(projectPath, *exportFlag, *outFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *snapshotFlag != "" {
		if err := runSnapshot(projectPath, *snapshotFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotFlag)
		return
	}

	if err := runTUI(cfg, projectPath, *storeFlag, *noWatchFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(projectPath, formatArg, out string) error {
	p, err := loader.Load(projectPath)
	if err != nil {
		return err
	}
	g, err := graph.Build(p.Doc)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	switch strings.ToLower(formatArg) {
	case "wizard":
		result, err := export.RunWizard(g, p.Meta.Title)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", result.Format, result.OutputPath)
		return nil

	case "all":
		dir := out
		if dir == "" {
			dir = "."
		}
		var eg errgroup.Group
		for _, format := range export.Formats {
			format := format
			eg.Go(func() error {
				content, err := export.Render(format, g, p.Meta.Title)
				if err != nil {
					return err
				}
				path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", p.Meta.ID, format))
				if err := export.WriteFile(path, content); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", path)
				return nil
			})
		}
		return eg.Wait()

	default:
		format, err := export.ParseFormat(formatArg)
		if err != nil {
			return err
		}
		content, err := export.Render(format, g, p.Meta.Title)
		if err != nil {
			return err
		}
		if out == "" {
			fmt.Print(content)
			return nil
		}
		if err := export.WriteFile(out, content); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	}
}

// runSnapshot settles the layout synchronously and writes a vector snapshot.
func runSnapshot(projectPath, out string) error {
	p, err := loader.Load(projectPath)
	if err != nil {
		return err
	}
	g, err := graph.Build(p.Doc)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	engine := layout.New(layout.Options{})
	engine.SetNodes(g.Nodes)
	engine.SetEdges(g.Edges)
	engine.Run()

	const width, height = 1200, 800
	vp := engine.Fit(width, height, 40)
	return render.SaveSnapshot(g, engine.Positions(), vp, render.SnapshotOptions{
		Path:   out,
		Title:  p.Meta.Title,
		Width:  width,
		Height: height,
	})
}

func runTUI(cfg config.Config, projectPath, storePath string, noWatch bool) error {
	if storePath == "" {
		storePath = config.DefaultStorePath()
	}

	var st *store.Store
	if storePath != "" {
		if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
			debug.Log("cannot create data dir: %v", err)
		} else {
			var err error
			st, err = store.Open(storePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: annotations disabled: %v\n", err)
				st = nil
			}
		}
	}

	var w *watcher.Watcher
	if !noWatch {
		var err error
		w, err = watcher.New(projectPath)
		if err == nil {
			if err := w.Start(); err != nil {
				debug.Log("watcher start failed: %v", err)
				w = nil
			}
		}
	}

	m := ui.New(ui.Options{
		ProjectPath: projectPath,
		Config:      cfg,
		Store:       st,
		Insight:     insight.NewClient(cfg.Insight.BaseURL),
		Watcher:     w,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
