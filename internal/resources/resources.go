// Package resources implements MCP resource handlers for the memory server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (memory://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/specmem/internal/config"
	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// SourcesURI addresses the source catalog resource.
const SourcesURI = "memory://sources"

// Handler manages memory resource endpoints.
type Handler struct {
	engine *memory.Engine
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(engine *memory.Engine) *Handler {
	return &Handler{engine: engine}
}

// SourcesResource returns the MCP resource definition for the source catalog.
func (h *Handler) SourcesResource() mcp.Resource {
	return mcp.NewResource(
		SourcesURI,
		"Project Memory Sources",
		mcp.WithResourceDescription("Discoverable memory sources with token estimates and budget ceilings"),
		mcp.WithMIMEType("application/json"),
	)
}

// sourcesDocument is the JSON shape served at memory://sources.
type sourcesDocument struct {
	Root            string                `json:"root"`
	Branch          string                `json:"branch,omitempty"`
	Budget          config.Budget         `json:"budget"`
	Sources         []memory.MemorySource `json:"sources"`
	EstimatedTokens int                   `json:"total_estimated_tokens"`
	Warning         string                `json:"warning,omitempty"`
}

// HandleSources returns the current source catalog as JSON.
func (h *Handler) HandleSources(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sources := h.engine.Sources(memory.FilterAll)
	if sources == nil {
		sources = []memory.MemorySource{}
	}

	doc := sourcesDocument{
		Root:    h.engine.Root(),
		Budget:  h.engine.Config().Budget,
		Sources: sources,
		Warning: h.engine.Warning(),
	}
	if branch, ok := h.engine.Branch(); ok {
		doc.Branch = branch
	}
	for _, src := range sources {
		doc.EstimatedTokens += src.EstimatedTokens
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling sources: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
