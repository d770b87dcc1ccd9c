package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/flowgraph/internal/config"
	"github.com/dusk-indust/flowgraph/internal/mcptools"
)

// runServeMCP starts the MCP server on stdio, or over streamable HTTP when
// addr is set. The server stops on SIGINT/SIGTERM or when the client hangs
// up. The working directory's config decides whether builds also persist to
// a KuzuDB directory.
func runServeMCP(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	svc := mcptools.NewFlowGraphService()

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if cfg.GraphDB != "" {
		svc.SetGraphDB(cfg.GraphDB)
	}

	if addr != "" {
		fmt.Fprintf(os.Stderr, "flowgraph MCP server listening on %s\n", addr)
		return mcptools.RunMCPServer(ctx, svc, addr)
	}
	return mcptools.RunMCPServerStdio(ctx, svc)
}
