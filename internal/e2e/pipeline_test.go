//go:build e2e

package e2e

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/flowgraph/internal/export"
	"github.com/dusk-indust/flowgraph/internal/graph"
	"github.com/dusk-indust/flowgraph/internal/source"
)

// fixtureDir returns the absolute path of a fixture project.
func fixtureDir(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fixtures", name))
	require.NoError(t, err)
	return abs
}

// buildFixture loads a fixture project and builds its flow graph.
func buildFixture(t *testing.T, name string) (*graph.Graph, *graph.Document) {
	t.Helper()

	model, err := source.Load(context.Background(), source.Options{
		Root: fixtureDir(t, name),
	})
	require.NoError(t, err)

	g, err := graph.New(model).Build()
	require.NoError(t, err)

	doc, err := g.Document()
	require.NoError(t, err)
	return g, doc
}

// findNodeByName returns the unique node with the given declared name.
func findNodeByName(t *testing.T, doc *graph.Document, name string) graph.NodeRecord {
	t.Helper()
	var found []graph.NodeRecord
	for _, n := range doc.Nodes {
		if n.Name == name {
			found = append(found, n)
		}
	}
	require.Len(t, found, 1, "expected exactly one node named %q", name)
	return found[0]
}

// findNodeBySpan returns the unique node with the given source span.
func findNodeBySpan(t *testing.T, doc *graph.Document, span string) graph.NodeRecord {
	t.Helper()
	var found []graph.NodeRecord
	for _, n := range doc.Nodes {
		if n.Span == span {
			found = append(found, n)
		}
	}
	require.Len(t, found, 1, "expected exactly one node spanning %q", span)
	return found[0]
}

// TestFlowGraph_E2E_TypeScriptProject builds the graph of the three-file
// TypeScript fixture and verifies the full node and edge population.
func TestFlowGraph_E2E_TypeScriptProject(t *testing.T) {
	g, doc := buildFixture(t, "ts_project")

	stats := g.Stats()
	assert.Equal(t, 18, stats.NodeCount)
	assert.Equal(t, 13, stats.EdgeCount)
	assert.Equal(t, map[graph.NodeKind]int{
		graph.NodeKindFunction: 5,
		graph.NodeKindCall:     5,
		graph.NodeKindArgument: 6,
		graph.NodeKindObject:   1,
		graph.NodeKindAny:      1,
	}, stats.ByKind)

	// --- Ids are dense and follow creation order ---

	for i, n := range doc.Nodes {
		assert.Equal(t, i, n.ID)
	}
	for i, e := range doc.Edges {
		assert.Equal(t, i, e.ID)
	}

	// --- The exported registry object links to its method call site ---

	registry := findNodeByName(t, doc, "registry")
	assert.Equal(t, graph.NodeKindObject, registry.Kind)
	require.Len(t, registry.Outgoing, 1)

	callEdge := doc.Edges[registry.Outgoing[0]]
	assert.Equal(t, graph.EdgeKindCall, callEdge.Kind)
	assert.Equal(t, `registry.set("double", double)`, doc.Nodes[callEdge.Target].Span)

	// --- run(7) absorbed the call inside run's imported definition ---

	runCall := findNodeBySpan(t, doc, "run(7)")
	var childSpans, argSpans []string
	for _, id := range runCall.Outgoing {
		e := doc.Edges[id]
		target := doc.Nodes[e.Target].Span
		switch e.Kind {
		case graph.EdgeKindChild:
			childSpans = append(childSpans, target)
		case graph.EdgeKindArgument:
			argSpans = append(argSpans, target)
		}
	}
	assert.Equal(t, []string{"double(x)"}, childSpans,
		"the call site should inherit the child calls of the resolved definition")
	assert.Equal(t, []string{"7"}, argSpans)

	// --- Class methods become function nodes; callback params stay opaque ---

	apply := findNodeByName(t, doc, "apply")
	assert.Equal(t, graph.NodeKindFunction, apply.Kind)
	assert.Len(t, apply.Outgoing, 2, "apply wraps two transform calls")

	transform := findNodeBySpan(t, doc, "transform")
	assert.Equal(t, graph.NodeKindAny, transform.Kind)

	// --- The non-exported helper variable never becomes a node ---

	for _, n := range doc.Nodes {
		assert.NotEqual(t, "helper", n.Name)
	}
}

// TestFlowGraph_E2E_JavaScriptProject builds the graph of the two-file
// JavaScript fixture, which resolves a call through an import with an
// explicit .js extension.
func TestFlowGraph_E2E_JavaScriptProject(t *testing.T) {
	g, doc := buildFixture(t, "js_project")

	stats := g.Stats()
	assert.Equal(t, 10, stats.NodeCount)
	assert.Equal(t, 7, stats.EdgeCount)
	assert.Equal(t, map[graph.NodeKind]int{
		graph.NodeKindFunction: 3,
		graph.NodeKindCall:     3,
		graph.NodeKindArgument: 3,
		graph.NodeKindObject:   1,
	}, stats.ByKind)

	// --- new App() is an object binding, not a call ---

	app := findNodeByName(t, doc, "app")
	assert.Equal(t, graph.NodeKindObject, app.Kind)

	// --- greet("world") flattened the format call from the imported file ---

	greetCall := findNodeBySpan(t, doc, `greet("world")`)
	var childSpans []string
	for _, id := range greetCall.Outgoing {
		if e := doc.Edges[id]; e.Kind == graph.EdgeKindChild {
			childSpans = append(childSpans, doc.Nodes[e.Target].Span)
		}
	}
	assert.Equal(t, []string{"format(name)"}, childSpans)

	// The non-exported format function still got a node: it is reachable
	// through greet's body.
	format := findNodeByName(t, doc, "format")
	assert.Equal(t, graph.NodeKindFunction, format.Kind)
	assert.Contains(t, format.Location, "lib/greeting.js")
}

// TestFlowGraph_E2E_Exports runs the whole pipeline into every export
// surface: JSON file round-trip, Mermaid rendering, and Kuzu persistence.
func TestFlowGraph_E2E_Exports(t *testing.T) {
	_, doc := buildFixture(t, "ts_project")

	// --- JSON file round-trip ---

	jsonPath := filepath.Join(t.TempDir(), "out", "flowgraph.json")
	require.NoError(t, export.WriteJSONFile(jsonPath, doc))

	fromJSON, err := export.ReadJSONFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, doc, fromJSON)

	// --- Mermaid rendering covers every node and edge ---

	mermaid := export.GenerateMermaid(doc)
	assert.Contains(t, mermaid, "flowchart TD")
	for _, n := range doc.Nodes {
		assert.Contains(t, mermaid, "N"+strconv.Itoa(n.ID))
	}
	assert.Contains(t, mermaid, `[("registry")]`)

	// --- Kuzu persistence round-trip ---

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "graph")
	require.NoError(t, export.PersistKuzu(ctx, dbPath, doc))

	store, err := export.NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fromKuzu, err := store.ReadDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, fromKuzu)

	kstats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 18, kstats.NodeCount)
	assert.Equal(t, 13, kstats.EdgeCount)
}
