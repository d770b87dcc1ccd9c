package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewFlowGraphMCPServer creates an MCP server with all 4 flow-graph tools
// registered.
func NewFlowGraphMCPServer(svc *FlowGraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "flowgraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_flow_graph",
		Description: "Analyze a JavaScript/TypeScript source tree and build its call and data flow graph. Walks the file tree, parses files with tree-sitter, and expands exported declarations into flow nodes and edges.",
	}, svc.BuildFlowGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_nodes",
		Description: "Search the most recently built flow graph for nodes, filtered by node kind and declared-name substring.",
	}, svc.QueryNodes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "node_neighbors",
		Description: "Return one flow-graph node together with its incoming and outgoing edges and the nodes on their far ends.",
	}, svc.NodeNeighbors)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_graph",
		Description: "Render the most recently built flow graph as a JSON document or a Mermaid flowchart.",
	}, svc.ExportGraph)

	return server
}

// RunMCPServer starts an HTTP server exposing the flow-graph MCP tools.
func RunMCPServer(ctx context.Context, svc *FlowGraphService, addr string) error {
	server := NewFlowGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *FlowGraphService) error {
	return NewFlowGraphMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
