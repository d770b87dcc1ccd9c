package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dusk-indust/flowgraph/internal/config"
	"github.com/dusk-indust/flowgraph/internal/graph"
)

// runQuery searches a previously built flow graph for nodes by kind and name.
// It queries the project's KuzuDB directly when one exists, otherwise it
// filters the JSON document.
func runQuery(args []string) error {
	fs := flag.NewFlagSet("flowgraph query", flag.ContinueOnError)
	projectRoot := fs.String("project-root", ".", "path to the project")
	input := fs.String("input", "", "read this JSON document instead of the project's outputs")
	name := fs.String("name", "", "substring to match against node names")
	kind := fs.String("kind", "", "node kind filter: function, call, argument, object, or any")
	limit := fs.Int("limit", 20, "maximum number of matches")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" && *kind == "" {
		return fmt.Errorf("provide -name or -kind to filter nodes")
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if *input == "" {
		if store, ok := openGraphDB(resolvePath(*projectRoot, cfg.GraphDB)); ok {
			defer store.Close()
			nodes, err := store.QueryNodes(ctx, strings.ToLower(*kind), *name, *limit)
			if err != nil {
				return err
			}
			printNodes(nodes)
			return nil
		}
	}

	doc, err := readDocument(documentPath(*projectRoot, *input, cfg))
	if err != nil {
		return err
	}
	printNodes(filterNodes(doc.Nodes, *kind, *name, *limit))
	return nil
}

// filterNodes applies the kind and name filters over serialized nodes, the
// same match the MCP query tool uses.
func filterNodes(nodes []graph.NodeRecord, kind, name string, limit int) []graph.NodeRecord {
	if limit <= 0 {
		limit = 20
	}
	want := graph.NodeKind(strings.ToLower(kind))

	out := make([]graph.NodeRecord, 0, limit)
	for _, n := range nodes {
		if kind != "" && n.Kind != want {
			continue
		}
		if name != "" && !strings.Contains(n.Name, name) {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// printNodes writes one line per node: id, kind, display text, location.
func printNodes(nodes []graph.NodeRecord) {
	if len(nodes) == 0 {
		fmt.Println("no nodes matched")
		return
	}
	for _, n := range nodes {
		display := n.Name
		if display == "" {
			display = fmt.Sprintf("%.40s", strings.Join(strings.Fields(n.Span), " "))
		}
		fmt.Printf("%5d  %-8s  %-40s  %s\n", n.ID, n.Kind, display, n.Location)
	}
}
