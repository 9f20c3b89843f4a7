package main

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/spf13/cobra"
)

var (
	searchType   string
	searchFilter string
	searchMax    int
	searchCase   bool
	searchRegex  bool
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the project's memory sources",
	Long: `Search every memory source line by line with relevance scoring.

Quote text for an exact phrase, ask a question for natural-language
handling, or pass --regex for pattern matching.

Examples:
  specmem search "user authentication"
  specmem search '"session token"' --filter SPEC
  specmem search 'auth\w+' --regex --max 5
  specmem search "how do we handle payments?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "Force interpretation: keyword, phrase, regex, or natural")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "Restrict sources: ALL, GOVERNANCE, or SPEC")
	searchCmd.Flags().IntVarP(&searchMax, "max", "n", 0, "Maximum results (default 20, cap 100)")
	searchCmd.Flags().BoolVar(&searchCase, "case-sensitive", false, "Exact-case matching; disables stem matching")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "Treat the query as a regular expression")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	resp, err := engine.Search(memory.SearchRequest{
		Text:          strings.Join(args, " "),
		Type:          searchType,
		Filter:        searchFilter,
		MaxResults:    searchMax,
		CaseSensitive: searchCase,
		Regex:         searchRegex,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		data, err := memory.ExportJSON(resp)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(memory.FormatSearchResults(resp))
	return nil
}
