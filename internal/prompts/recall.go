// Package prompts implements MCP prompt handlers for the memory server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RecallPrompt handles the mem-recall MCP prompt.
// It instructs the AI to load the project's memory before a workflow
// command runs.
type RecallPrompt struct{}

// NewRecallPrompt creates a RecallPrompt.
func NewRecallPrompt() *RecallPrompt {
	return &RecallPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RecallPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("mem-recall",
		mcp.WithPromptDescription(
			"Recall the project's memory before a workflow command. "+
				"Loads the constitution, roadmap, and relevant specifications "+
				"so the command runs with full project context.",
		),
		mcp.WithArgument("command",
			mcp.ArgumentDescription(
				"Workflow command about to run: specify, plan, tasks, analyze, or implement. Default: plan",
			),
		),
	)
}

// Handle processes the mem-recall prompt request.
func (p *RecallPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	command := "plan"
	if args := req.Params.Arguments; args != nil {
		if c, ok := args["command"]; ok && c != "" {
			command = c
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Recall project memory for: %s", command),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I'm about to run the '%s' workflow command on this project.\n\n"+
						"Please:\n"+
						"1. Run `mem_context` with command='%s' to load the project's memory\n"+
						"2. Read the constitution section carefully — it constrains every decision\n"+
						"3. If anything in the loaded context is unclear, run `mem_search` to dig further\n"+
						"4. Then proceed with the %s work, citing the sources you relied on",
					command, command, command,
				)),
			},
		},
	}, nil
}
