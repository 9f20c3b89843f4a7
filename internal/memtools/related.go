package memtools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── RelatedTool ────────────────────────────────────────────────────────────

// RelatedTool handles the mem_related MCP tool.
type RelatedTool struct {
	engines *Provider
}

// NewRelatedTool creates a RelatedTool.
func NewRelatedTool(engines *Provider) *RelatedTool {
	return &RelatedTool{engines: engines}
}

// Definition returns the MCP tool definition for mem_related.
func (t *RelatedTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_related",
		mcp.WithDescription(
			"Find feature specifications related to the current one, ranked by keyword "+
				"overlap of their title and summary sections. Explicit references between "+
				"specs (a feature directory name mentioned in the text) are followed too.",
		),
		mcp.WithString("branch",
			mcp.Description("Feature branch like 003-user-auth (default: detected from .git/HEAD)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max related specs to return (default: from configuration)"),
		),
		mcp.WithString("root",
			mcp.Description("Project root to inspect (default: the server's project)"),
		),
	)
}

// Handle processes the mem_related tool call.
func (t *RelatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engine, err := t.engines.For(req.GetString("root", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid root: %v", err)), nil
	}

	branch := req.GetString("branch", "")
	current, related, err := engine.Related(branch, intArg(req, "limit", 0))
	if err != nil {
		if userError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolving related specs failed: %v", err)), nil
	}
	if current == nil {
		name := branch
		if name == "" {
			name, _ = engine.Branch()
		}
		return mcp.NewToolResultText(
			fmt.Sprintf("No specification found for branch %s.", name)), nil
	}

	return mcp.NewToolResultText(memory.FormatRelated(current, related)), nil
}
