package mcptools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/flowgraph/internal/export"
	"github.com/dusk-indust/flowgraph/internal/graph"
	"github.com/dusk-indust/flowgraph/internal/source"
)

// FlowGraphService holds the most recently built flow graph for the MCP tool
// handlers. A build replaces the cached document wholesale; the query tools
// read it without copying, which is safe because documents are never mutated
// after serialization.
type FlowGraphService struct {
	mu      sync.Mutex
	doc     *graph.Document
	stats   graph.Stats
	graphDB string // when set, builds also persist to this KuzuDB directory
}

// NewFlowGraphService creates a FlowGraphService with no graph loaded.
func NewFlowGraphService() *FlowGraphService {
	return &FlowGraphService{}
}

// SetGraphDB sets the KuzuDB directory that builds persist into. An empty
// path disables persistence.
func (s *FlowGraphService) SetGraphDB(path string) {
	s.mu.Lock()
	s.graphDB = path
	s.mu.Unlock()
}

// BuildFlowGraph analyzes a source tree, builds its flow graph, caches the
// serialized document, and returns graph statistics.
func (s *FlowGraphService) BuildFlowGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildFlowGraphInput,
) (*mcp.CallToolResult, BuildFlowGraphOutput, error) {
	if input.Path == "" {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("path is required")
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("path is not a directory: %s", input.Path)
	}

	langs := make([]source.Language, 0, len(input.Languages))
	for _, name := range input.Languages {
		lang, err := source.ParseLanguage(name)
		if err != nil {
			return nil, BuildFlowGraphOutput{}, err
		}
		langs = append(langs, lang)
	}

	model, err := source.Load(ctx, source.Options{
		Root:         input.Path,
		Languages:    langs,
		ExcludeDirs:  input.ExcludeDirs,
		UseGitignore: true,
	})
	if err != nil {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("load sources: %w", err)
	}

	g, err := graph.New(model).Build()
	if err != nil {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("build graph: %w", err)
	}

	doc, err := g.Document()
	if err != nil {
		return nil, BuildFlowGraphOutput{}, fmt.Errorf("serialize graph: %w", err)
	}

	stats := g.Stats()
	stats.Files = len(model.Files())

	s.mu.Lock()
	s.doc = doc
	s.stats = stats
	graphDB := s.graphDB
	s.mu.Unlock()

	// Persist a queryable copy so the diagram and query commands work without
	// the MCP server running.
	if graphDB != "" {
		if err := export.PersistKuzu(ctx, graphDB, doc); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist graph: %v\n", err)
		}
	}

	return nil, BuildFlowGraphOutput{Stats: stats}, nil
}

// document returns the cached document, or an error when no build has run.
func (s *FlowGraphService) document() (*graph.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("no flow graph built yet: call build_flow_graph first")
	}
	return s.doc, nil
}

// QueryNodes searches the cached document for nodes by kind and name.
func (s *FlowGraphService) QueryNodes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input QueryNodesInput,
) (*mcp.CallToolResult, QueryNodesOutput, error) {
	doc, err := s.document()
	if err != nil {
		return nil, QueryNodesOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	kind := graph.NodeKind(strings.ToLower(input.Kind))

	nodes := make([]graph.NodeRecord, 0, limit)
	for _, n := range doc.Nodes {
		if input.Kind != "" && n.Kind != kind {
			continue
		}
		if input.Name != "" && !strings.Contains(n.Name, input.Name) {
			continue
		}
		nodes = append(nodes, n)
		if len(nodes) == limit {
			break
		}
	}

	return nil, QueryNodesOutput{Nodes: nodes, Total: len(nodes)}, nil
}

// NodeNeighbors returns one node with its edges and the nodes they lead to.
// Node and edge ids are dense and index the document slices directly.
func (s *FlowGraphService) NodeNeighbors(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input NodeNeighborsInput,
) (*mcp.CallToolResult, NodeNeighborsOutput, error) {
	doc, err := s.document()
	if err != nil {
		return nil, NodeNeighborsOutput{}, err
	}
	if input.ID < 0 || input.ID >= len(doc.Nodes) {
		return nil, NodeNeighborsOutput{}, fmt.Errorf("node %d not found", input.ID)
	}
	node := doc.Nodes[input.ID]

	var edgeIDs []int
	switch strings.ToLower(input.Direction) {
	case "incoming":
		edgeIDs = node.Incoming
	case "outgoing":
		edgeIDs = node.Outgoing
	case "", "both":
		edgeIDs = append(append([]int{}, node.Incoming...), node.Outgoing...)
	default:
		return nil, NodeNeighborsOutput{}, fmt.Errorf("unknown direction: %s (want incoming, outgoing, or both)", input.Direction)
	}

	out := NodeNeighborsOutput{Node: node}
	seen := make(map[int]bool)
	for _, id := range edgeIDs {
		e := doc.Edges[id]
		out.Edges = append(out.Edges, e)
		peer := e.Target
		if peer == node.ID {
			peer = e.Source
		}
		if !seen[peer] {
			seen[peer] = true
			out.Neighbors = append(out.Neighbors, doc.Nodes[peer])
		}
	}

	return nil, out, nil
}

// ExportGraph renders the cached document as JSON or Mermaid text.
func (s *FlowGraphService) ExportGraph(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExportGraphInput,
) (*mcp.CallToolResult, ExportGraphOutput, error) {
	doc, err := s.document()
	if err != nil {
		return nil, ExportGraphOutput{}, err
	}

	format := strings.ToLower(input.Format)
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, doc); err != nil {
			return nil, ExportGraphOutput{}, err
		}
		return nil, ExportGraphOutput{Format: format, Content: buf.String()}, nil
	case "mermaid":
		return nil, ExportGraphOutput{Format: format, Content: export.GenerateMermaid(doc)}, nil
	default:
		return nil, ExportGraphOutput{}, fmt.Errorf("unknown format: %s (want json or mermaid)", input.Format)
	}
}
