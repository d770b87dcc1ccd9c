package mcptools

import "github.com/dusk-indust/flowgraph/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildFlowGraphInput is the input for the build_flow_graph MCP tool.
type BuildFlowGraphInput struct {
	Path        string   `json:"path" jsonschema:"the absolute path to the source tree to analyze"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to analyze (default: all). Values: javascript, typescript, tsx"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from the walk (e.g. vendor, fixtures)"`
}

// BuildFlowGraphOutput is the result of the build_flow_graph MCP tool.
type BuildFlowGraphOutput struct {
	Stats graph.Stats `json:"stats"`
}

// QueryNodesInput is the input for the query_nodes MCP tool.
type QueryNodesInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"filter by node kind: function, call, argument, object, any"`
	Name  string `json:"name,omitempty" jsonschema:"filter by declared name (substring match)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryNodesOutput is the result of the query_nodes MCP tool.
type QueryNodesOutput struct {
	Nodes []graph.NodeRecord `json:"nodes"`
	Total int                `json:"total"`
}

// NodeNeighborsInput is the input for the node_neighbors MCP tool.
type NodeNeighborsInput struct {
	ID        int    `json:"id" jsonschema:"node id from a previous build or query"`
	Direction string `json:"direction,omitempty" jsonschema:"incoming, outgoing, or both (default: both)"`
}

// NodeNeighborsOutput is the result of the node_neighbors MCP tool.
type NodeNeighborsOutput struct {
	Node      graph.NodeRecord   `json:"node"`
	Edges     []graph.EdgeRecord `json:"edges"`
	Neighbors []graph.NodeRecord `json:"neighbors"`
}

// ExportGraphInput is the input for the export_graph MCP tool.
type ExportGraphInput struct {
	Format string `json:"format,omitempty" jsonschema:"output format: json or mermaid (default: json)"`
}

// ExportGraphOutput is the result of the export_graph MCP tool.
type ExportGraphOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}
