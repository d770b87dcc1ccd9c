package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dusk-indust/flowgraph/internal/config"
	"github.com/dusk-indust/flowgraph/internal/export"
)

// runDiagram renders a previously built flow graph as Mermaid on stdout.
func runDiagram(args []string) error {
	fs := flag.NewFlagSet("flowgraph diagram", flag.ContinueOnError)
	projectRoot := fs.String("project-root", ".", "path to the project")
	input := fs.String("input", "", "read this JSON document instead of the project's outputs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}

	doc, err := loadDocument(context.Background(), *projectRoot, *input, cfg)
	if err != nil {
		return err
	}

	fmt.Print(export.GenerateMermaid(doc))
	return nil
}
