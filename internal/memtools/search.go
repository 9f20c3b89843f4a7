package memtools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchTool handles the mem_search MCP tool.
type SearchTool struct {
	engines *Provider
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(engines *Provider) *SearchTool {
	return &SearchTool{engines: engines}
}

// Definition returns the MCP tool definition for mem_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_search",
		mcp.WithDescription(
			"Search the project's memory sources (constitution, roadmap, feature specs) "+
				"line by line with relevance scoring. Quote text for an exact phrase, ask a "+
				"question for natural-language handling, or set regex for pattern matching.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query — keywords, a \"quoted phrase\", a question, or a regex pattern"),
		),
		mcp.WithString("query_type",
			mcp.Description("Force interpretation: keyword, phrase, regex, or natural (default: classified from the query)"),
		),
		mcp.WithString("source_filter",
			mcp.Description("Restrict to one class of sources: ALL (default), GOVERNANCE, or SPEC"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Max results (default: 20, max: 100)"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Exact-case matching; disables stem matching (default: false)"),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat the query as a regular expression (default: false)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default) or json"),
		),
		mcp.WithString("root",
			mcp.Description("Project root to search (default: the server's project)"),
		),
	)
}

// Handle processes the mem_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	engine, err := t.engines.For(req.GetString("root", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid root: %v", err)), nil
	}

	resp, err := engine.Search(memory.SearchRequest{
		Text:          query,
		Type:          req.GetString("query_type", ""),
		Filter:        req.GetString("source_filter", ""),
		MaxResults:    intArg(req, "max_results", 0),
		CaseSensitive: boolArg(req, "case_sensitive", false),
		Regex:         boolArg(req, "regex", false),
	})
	if err != nil {
		if userError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if req.GetString("format", "markdown") == "json" {
		data, err := memory.ExportJSON(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding results failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	return mcp.NewToolResultText(memory.FormatSearchResults(resp)), nil
}
