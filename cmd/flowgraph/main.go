package main

import (
	"flag"
	"fmt"
	"os"
)

// Global flags parsed ahead of the subcommand.
type cliFlags struct {
	ServeMCP bool
	Addr     string
	Version  bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("flowgraph", flag.ContinueOnError)
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server for editor integration")
	fs.StringVar(&flags.Addr, "addr", "", "serve MCP over streamable HTTP on this address instead of stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	if flags.ServeMCP {
		return runServeMCP(flags.Addr)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("missing command (want build, diagram, query, or init)")
	}

	switch rest[0] {
	case "build":
		return runBuild(rest[1:])
	case "diagram":
		return runDiagram(rest[1:])
	case "query":
		return runQuery(rest[1:])
	case "init":
		return runInit(rest[1:])
	default:
		return fmt.Errorf("unknown command %q (want build, diagram, query, or init)", rest[0])
	}
}
