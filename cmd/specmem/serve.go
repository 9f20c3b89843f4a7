package main

import (
	"fmt"

	memserver "github.com/HendryAvila/specmem/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Start the MCP server over stdio for AI tool integration.

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "specmem": {
        "command": "specmem",
        "args": ["serve"]
      }
    }
  }

Diagnostics go to stderr so they never interfere with the stdio
transport on stdout.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := memserver.New(rootFlag)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// ServeStdio handles SIGINT/SIGTERM and ends at stdin EOF.
	return server.ServeStdio(s)
}
