package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// flowgraphMCPEntry is the MCP server configuration for the flowgraph binary.
var flowgraphMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "flowgraph",
  "args": ["--serve-mcp"]
}`)

// starterConfig is the flowgraph.yml written by init.
const starterConfig = `# flowgraph project configuration
languages: [javascript, typescript]
exclude_dirs: []
use_gitignore: true
output: flowgraph.json
graph_db: .flowgraph/graph
`

// runInit writes a starter flowgraph.yml and registers the MCP server in the
// project's .mcp.json.
func runInit(args []string) error {
	fs := flag.NewFlagSet("flowgraph init", flag.ContinueOnError)
	projectRoot := fs.String("project-root", ".", "path to the project")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	abs, err := filepath.Abs(*projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	cfgPath := filepath.Join(abs, "flowgraph.yml")
	if _, err := os.Stat(cfgPath); err == nil && !*force {
		fmt.Printf("  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, cfgPath))
	} else {
		if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfgPath, err)
		}
		fmt.Printf("  created %s\n", dotRelative(abs, cfgPath))
	}

	if err := mergeMCPConfig(filepath.Join(abs, ".mcp.json"), *force); err != nil {
		return err
	}

	fmt.Println("\nSetup complete. Run 'flowgraph build' to index the project.")
	return nil
}

// mergeMCPConfig creates or merges the flowgraph entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["flowgraph"]; exists && !force {
		fmt.Printf("  skipped .mcp.json flowgraph entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["flowgraph"] = flowgraphMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Printf("  %s .mcp.json with flowgraph MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
