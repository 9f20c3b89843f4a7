// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/HendryAvila/specmem/internal/config"
	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/HendryAvila/specmem/internal/memtools"
	"github.com/HendryAvila/specmem/internal/prompts"
	"github.com/HendryAvila/specmem/internal/resources"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts, and
// resources registered, serving the project at root. An empty root walks up
// from the working directory to the nearest directory holding memory/. This
// is the single place where all dependencies are resolved.
func New(root string) (*server.MCPServer, error) {
	projectRoot, err := config.DiscoverRoot(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	engine, err := memory.New(projectRoot, memory.Options{})
	if err != nil {
		return nil, fmt.Errorf("creating memory engine: %w", err)
	}
	// Config fallbacks go to stderr so they never touch the stdio transport.
	if w := engine.Warning(); w != "" {
		log.Printf("WARNING: %s", w)
	}

	s := server.NewMCPServer(
		"specmem",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register memory tools ---

	engines := memtools.NewProvider(engine)

	searchTool := memtools.NewSearchTool(engines)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	contextTool := memtools.NewContextTool(engines)
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	relatedTool := memtools.NewRelatedTool(engines)
	s.AddTool(relatedTool.Definition(), relatedTool.Handle)

	historyTool := memtools.NewHistoryTool(engines)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	// --- Register prompts ---

	recallPrompt := prompts.NewRecallPrompt()
	s.AddPrompt(recallPrompt.Definition(), recallPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(engine)
	s.AddResource(resourceHandler.SourcesResource(), resourceHandler.HandleSources)

	return s, nil
}

// serverInstructions returns the system instructions that tell the AI
// how to use the memory server effectively.
func serverInstructions() string {
	return `You have access to specmem, a project memory server for
spec-driven development projects.

The project's memory lives in versioned markdown: a constitution and
roadmap under memory/, and one specification per feature under
specs/<NNN>-<slug>/. specmem reads these fresh on every call — nothing
is indexed or cached, so results always reflect the working tree.

## WHEN TO USE IT

- Before executing a workflow command (specify, plan, tasks, analyze,
  implement), call mem_context with that command name. It assembles the
  relevant sources in priority order under token budgets, so you start
  with the constitution and the current feature spec already in view.
- When you need a specific fact — a requirement, a constraint, a past
  decision — call mem_search instead of re-reading whole files. Quote
  text for an exact phrase, ask a question for natural-language
  handling, or set regex for patterns.
- Call mem_related to find specifications that overlap the current
  feature before changing shared behavior.
- Call mem_history to see what this session has already searched.

## GROUND RULES

- The constitution outranks everything; if loaded context and your plan
  disagree, follow the constitution or ask the user.
- Truncated sources are marked in the output. Search the source before
  assuming the cut part is irrelevant.
- These tools are read-only. Editing memory files is your job, done
  through normal file edits the user can review.`
}
