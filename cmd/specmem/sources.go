package main

import (
	"fmt"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List discoverable memory sources",
	Long: `List every memory source the engine can discover, with its class
and estimated token cost.

Examples:
  specmem sources
  specmem sources --root ../other-project`,
	RunE: runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	fmt.Println(memory.FormatSources(engine.Sources(memory.FilterAll)))
	return nil
}
