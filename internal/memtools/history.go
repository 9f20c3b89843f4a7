package memtools

import (
	"context"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryTool handles the mem_history MCP tool.
type HistoryTool struct {
	engines *Provider
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(engines *Provider) *HistoryTool {
	return &HistoryTool{engines: engines}
}

// Definition returns the MCP tool definition for mem_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_history",
		mcp.WithDescription(
			"List this session's recent memory searches, newest first. History lives in "+
				"process memory only and is capped at the last ten queries.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: all recorded)"),
		),
	)
}

// Handle processes the mem_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 0)
	entries := t.engines.Base().History().Recent(limit)
	return mcp.NewToolResultText(memory.FormatHistory(entries)), nil
}
