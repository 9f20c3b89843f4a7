// Specmem: Project Memory Context & Search Engine
//
// Serves a spec-driven project's memory — the constitution, roadmap, and
// feature specifications — to AI coding agents and humans, as a CLI and as
// an MCP server over stdio.
//
// Usage:
//
//	specmem search "user authentication"   # Search all memory sources
//	specmem context plan                   # Load context for a command
//	specmem serve                          # Start MCP server (stdio)
package main

import (
	"fmt"
	"os"

	"github.com/HendryAvila/specmem/internal/config"
	"github.com/HendryAvila/specmem/internal/memory"
	memserver "github.com/HendryAvila/specmem/internal/server"
	"github.com/spf13/cobra"
)

// Global flags
var rootFlag string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "specmem",
	Short: "Project memory context and search engine",
	Long: `Specmem serves a spec-driven project's memory: the constitution and
roadmap under memory/, and one specification per feature under specs/.

It assembles token-budgeted context for workflow commands, searches every
memory source line by line with relevance scoring, and runs as an MCP
server over stdio for AI tool integration. Sources are read fresh on each
call — nothing is indexed or persisted.

Examples:
  # Search every memory source
  specmem search "user authentication"

  # Load the context the implement command would see
  specmem context implement

  # List discoverable sources with token estimates
  specmem sources

  # Start the MCP server
  specmem serve`,
	Version: memserver.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Project root (default: walk up from the working directory)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the specmem version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("specmem v%s\n", memserver.Version)
	},
}

// newEngine constructs the engine CLI commands run against, resolving the
// project root from the global --root flag.
func newEngine() (*memory.Engine, error) {
	projectRoot, err := config.DiscoverRoot(rootFlag)
	if err != nil {
		return nil, err
	}
	engine, err := memory.New(projectRoot, memory.Options{})
	if err != nil {
		return nil, err
	}
	if w := engine.Warning(); w != "" {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	return engine, nil
}
