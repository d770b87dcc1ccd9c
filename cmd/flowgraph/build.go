package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/flowgraph/internal/config"
	"github.com/dusk-indust/flowgraph/internal/export"
	"github.com/dusk-indust/flowgraph/internal/graph"
	"github.com/dusk-indust/flowgraph/internal/source"
)

// runBuild analyzes the project sources and writes the flow graph. Flags
// override the project config; relative paths anchor at the project root.
func runBuild(args []string) error {
	fs := flag.NewFlagSet("flowgraph build", flag.ContinueOnError)
	projectRoot := fs.String("project-root", ".", "path to the source tree")
	output := fs.String("output", "", "output file (default: config output, else stdout)")
	format := fs.String("format", "json", "output format: json or mermaid")
	graphDB := fs.String("graph-db", "", "also persist the graph into this KuzuDB directory")
	verbose := fs.Bool("verbose", false, "print per-file progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}

	langs := make([]source.Language, 0, len(cfg.Languages))
	for _, name := range cfg.Languages {
		lang, err := source.ParseLanguage(name)
		if err != nil {
			return err
		}
		langs = append(langs, lang)
	}

	ctx := context.Background()
	model, err := source.Load(ctx, source.Options{
		Root:         *projectRoot,
		Languages:    langs,
		ExcludeDirs:  cfg.ExcludeDirs,
		UseGitignore: cfg.UseGitignore,
	})
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	var opts []graph.Option
	if *verbose || cfg.Verbose {
		opts = append(opts, graph.WithProgress(func(p graph.Progress) {
			fmt.Fprintf(os.Stderr, "  ✓ %s   %d nodes  %d edges\n", p.Path, p.Nodes, p.Edges)
		}))
	}

	g, err := graph.New(model, opts...).Build()
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	doc, err := g.Document()
	if err != nil {
		return fmt.Errorf("serialize graph: %w", err)
	}

	if *verbose || cfg.Verbose {
		stats := g.Stats()
		fmt.Fprintf(os.Stderr, "%d files   %d nodes  %d edges\n",
			len(model.Files()), stats.NodeCount, stats.EdgeCount)
	}

	dest := *output
	if dest == "" {
		dest = cfg.Output
	}
	if err := writeOutput(resolvePath(*projectRoot, dest), *format, doc); err != nil {
		return err
	}

	dbPath := *graphDB
	if dbPath == "" {
		dbPath = cfg.GraphDB
	}
	if dbPath != "" {
		if err := export.PersistKuzu(ctx, resolvePath(*projectRoot, dbPath), doc); err != nil {
			return fmt.Errorf("persist graph: %w", err)
		}
	}

	return nil
}

// writeOutput renders the document in the requested format, to dest or to
// stdout when dest is empty.
func writeOutput(dest, format string, doc *graph.Document) error {
	switch format {
	case "json":
		if dest == "" {
			return export.WriteJSON(os.Stdout, doc)
		}
		return export.WriteJSONFile(dest, doc)
	case "mermaid":
		text := export.GenerateMermaid(doc)
		if dest == "" {
			fmt.Print(text)
			return nil
		}
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return os.WriteFile(dest, []byte(text), 0o644)
	default:
		return fmt.Errorf("unknown format %q (want json or mermaid)", format)
	}
}
