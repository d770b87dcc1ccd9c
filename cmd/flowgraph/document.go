package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/flowgraph/internal/config"
	"github.com/dusk-indust/flowgraph/internal/export"
	"github.com/dusk-indust/flowgraph/internal/graph"
)

// defaultDocument is the JSON document probed when the config names none.
const defaultDocument = "flowgraph.json"

// resolvePath anchors relative paths at the project root.
func resolvePath(projectRoot, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// openGraphDB opens the KuzuDB directory when one exists at dbPath.
func openGraphDB(dbPath string) (*export.KuzuStore, bool) {
	if dbPath == "" {
		return nil, false
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, false
	}
	store, err := export.NewKuzuFileStore(dbPath)
	if err != nil {
		return nil, false
	}
	return store, true
}

// documentPath returns the JSON document path for the read commands: the
// explicit -input when given, else the configured output, else the default.
func documentPath(projectRoot, input string, cfg *config.ProjectConfig) string {
	if input != "" {
		return resolvePath(projectRoot, input)
	}
	name := cfg.Output
	if name == "" {
		name = defaultDocument
	}
	return resolvePath(projectRoot, name)
}

// readDocument loads the JSON document at path, with a pointer to the build
// command when nothing has been built yet.
func readDocument(path string) (*graph.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no flow graph found at %s\nRun 'flowgraph build' first, or pass -input", path)
	}
	return export.ReadJSONFile(path)
}

// loadDocument finds a previously built graph: the explicit -input file, the
// project's KuzuDB directory when it exists, else the JSON document.
func loadDocument(ctx context.Context, projectRoot, input string, cfg *config.ProjectConfig) (*graph.Document, error) {
	if input == "" {
		if store, ok := openGraphDB(resolvePath(projectRoot, cfg.GraphDB)); ok {
			defer store.Close()
			return store.ReadDocument(ctx)
		}
	}
	return readDocument(documentPath(projectRoot, input, cfg))
}
