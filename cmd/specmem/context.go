package main

import (
	"fmt"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/spf13/cobra"
)

var (
	contextBranch    string
	contextMaxTokens int
)

var contextCmd = &cobra.Command{
	Use:   "context <command>",
	Short: "Load memory context for a workflow command",
	Long: `Assemble the memory context a workflow command should run with:
the constitution, roadmap, current feature spec, and related specs,
loaded in priority order under token budgets.

Examples:
  specmem context plan
  specmem context implement --branch 003-user-auth
  specmem context specify --max-tokens 8000`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextBranch, "branch", "", "Feature branch (default: detected from .git/HEAD)")
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 0, "Override the global token ceiling")
}

func runContext(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	lc, err := engine.LoadContext(args[0], &memory.ContextOverrides{
		Branch:    contextBranch,
		MaxTokens: contextMaxTokens,
	})
	if err != nil {
		return err
	}

	fmt.Println(memory.FormatContext(lc))
	return nil
}
