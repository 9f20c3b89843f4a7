// Package memtools provides MCP tool handlers for the project memory engine.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies (*Provider) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools are read-only views over the project's memory sources: they never
// mutate the project. Invalid caller input comes back as a tool error result
// with a nil Go error, so the MCP session keeps running.
package memtools

import (
	"errors"

	"github.com/HendryAvila/specmem/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// userError reports whether err is caller input the tool should echo back
// rather than a fault.
func userError(err error) bool {
	var verr *memory.ValidationError
	return errors.As(err, &verr)
}
