package memtools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// ContextTool handles the mem_context MCP tool.
type ContextTool struct {
	engines *Provider
}

// NewContextTool creates a ContextTool.
func NewContextTool(engines *Provider) *ContextTool {
	return &ContextTool{engines: engines}
}

// Definition returns the MCP tool definition for mem_context.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_context",
		mcp.WithDescription(
			"Load the project's memory context for a workflow command: the constitution, "+
				"roadmap, current feature spec, and related specs, assembled under token budgets. "+
				"Use this before specify, plan, tasks, analyze, or implement work.",
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Workflow command the context is for: specify, plan, tasks, analyze, implement, or any custom name"),
		),
		mcp.WithString("branch",
			mcp.Description("Feature branch like 003-user-auth (default: detected from .git/HEAD)"),
		),
		mcp.WithNumber("max_tokens",
			mcp.Description("Override the global token ceiling for this call"),
		),
		mcp.WithString("root",
			mcp.Description("Project root to load from (default: the server's project)"),
		),
	)
}

// Handle processes the mem_context tool call.
func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := req.GetString("command", "")
	if command == "" {
		return mcp.NewToolResultError("'command' is required"), nil
	}

	engine, err := t.engines.For(req.GetString("root", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid root: %v", err)), nil
	}

	over := &memory.ContextOverrides{
		Branch:    req.GetString("branch", ""),
		MaxTokens: intArg(req, "max_tokens", 0),
	}

	lc, err := engine.LoadContext(command, over)
	if err != nil {
		if userError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading context failed: %v", err)), nil
	}

	return mcp.NewToolResultText(memory.FormatContext(lc)), nil
}
