// Package memory implements the project memory context and search engine.
//
// The engine discovers memory sources (governance documents under memory/,
// feature specifications under specs/), loads them under token budgets, and
// serves them two ways: as ambient context assembled for a named workflow
// command, and as line-level search results ranked by a deterministic
// relevance score.
//
// Everything is request-scoped: sources are enumerated fresh per call, nothing
// is indexed or persisted, and the only mutable state is a small in-process
// search history. The engine never reads ambient process state — callers hand
// it an explicit project root.
//
// This package follows the same design principles as the rest of the server:
// - SRP: catalog, loader, scorer, interpreter, and orchestration in separate files
// - DIP: configuration loading hides behind config.Store, not a concrete file layout
// - Pure core: scoring and query interpretation are I/O-free and unit-testable
package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/specmem/internal/config"
)

// --- Source classification ---

// SourceClass separates governance documents from feature specifications.
type SourceClass string

const (
	ClassGovernance SourceClass = "GOVERNANCE"
	ClassSpec       SourceClass = "SPEC"
)

// ClassForKind maps a configuration source kind to its class.
func ClassForKind(kind config.SourceKind) SourceClass {
	switch kind {
	case config.KindCurrentSpec, config.KindRelatedSpecs:
		return ClassSpec
	default:
		return ClassGovernance
	}
}

// SourceFilter restricts a search to one class of sources.
type SourceFilter string

const (
	FilterAll        SourceFilter = "ALL"
	FilterGovernance SourceFilter = "GOVERNANCE"
	FilterSpec       SourceFilter = "SPEC"
)

// validFilters is the set of allowed source filters.
var validFilters = map[SourceFilter]bool{
	FilterAll:        true,
	FilterGovernance: true,
	FilterSpec:       true,
}

// ParseFilter normalizes a raw filter string. Empty means ALL.
func ParseFilter(raw string) (SourceFilter, error) {
	if raw == "" {
		return FilterAll, nil
	}
	f := SourceFilter(strings.ToUpper(raw))
	if !validFilters[f] {
		return "", fmt.Errorf("invalid source filter %q: must be one of: ALL, GOVERNANCE, SPEC", raw)
	}
	return f, nil
}

// Includes reports whether the filter admits the given class.
func (f SourceFilter) Includes(class SourceClass) bool {
	switch f {
	case FilterGovernance:
		return class == ClassGovernance
	case FilterSpec:
		return class == ClassSpec
	default:
		return true
	}
}

// --- Query type enum ---

// QueryType tags how a query's text is interpreted during matching.
type QueryType string

const (
	QueryKeyword QueryType = "keyword"
	QueryPhrase  QueryType = "phrase"
	QueryRegex   QueryType = "regex"
	QueryNatural QueryType = "natural"
)

// validQueryTypes is the set of allowed query types.
var validQueryTypes = map[QueryType]bool{
	QueryKeyword: true,
	QueryPhrase:  true,
	QueryRegex:   true,
	QueryNatural: true,
}

// ParseQueryType returns an error if the type is not recognized.
func ParseQueryType(raw string) (QueryType, error) {
	qt := QueryType(strings.ToLower(raw))
	if !validQueryTypes[qt] {
		return "", fmt.Errorf("invalid query type %q: must be one of: keyword, phrase, regex, natural", raw)
	}
	return qt, nil
}

// --- Load state machine ---

// LoadState tracks one source through a load attempt:
//
//	pending → loading → {loaded | skipped | error}
//	loaded  → {truncated → ready | ready}
//
// Terminal states are ready, skipped, and error. Error is reserved for
// unrecoverable conditions (a resolved path escaping the project root) and is
// always downgraded to skipped with a diagnostic before a source leaves this
// package.
type LoadState string

const (
	StatePending   LoadState = "pending"
	StateLoading   LoadState = "loading"
	StateLoaded    LoadState = "loaded"
	StateTruncated LoadState = "truncated"
	StateSkipped   LoadState = "skipped"
	StateError     LoadState = "error"
	StateReady     LoadState = "ready"
)

// validTransitions encodes the legal edges of the load state machine.
var validTransitions = map[LoadState][]LoadState{
	StatePending:   {StateLoading},
	StateLoading:   {StateLoaded, StateSkipped, StateError},
	StateLoaded:    {StateTruncated, StateReady},
	StateTruncated: {StateReady},
	StateError:     {StateSkipped},
}

// CanTransition reports whether moving from one load state to another is
// legal.
func CanTransition(from, to LoadState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a load state is final.
func (s LoadState) Terminal() bool {
	return s == StateReady || s == StateSkipped || s == StateError
}

// --- Core data structures ---

// MemorySource is a discoverable file. Its ID is a pure function of the
// path: the slash-normalized root-relative path with the .md suffix removed,
// e.g. "memory/constitution" or "specs/003-user-auth/spec".
type MemorySource struct {
	ID              string            `json:"id"`
	Path            string            `json:"path"`
	Class           SourceClass       `json:"class"`
	Kind            config.SourceKind `json:"kind"`
	ModTime         time.Time         `json:"mod_time"`
	Lines           int               `json:"lines"`
	EstimatedTokens int               `json:"estimated_tokens"`
}

// ContextSource is a loaded MemorySource, owned by the search or context
// request that created it.
type ContextSource struct {
	MemorySource
	Content        string    `json:"content,omitempty"`
	Tokens         int       `json:"tokens"`
	Truncated      bool      `json:"truncated"`
	OriginalTokens int       `json:"original_tokens,omitempty"`
	State          LoadState `json:"state"`
	Diagnostic     string    `json:"diagnostic,omitempty"`
}

// Loaded reports whether the source carries usable content.
func (cs *ContextSource) Loaded() bool {
	return cs.State == StateReady
}

// DroppedSource records a source excluded by the global token ceiling.
type DroppedSource struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// LoadedContext is the aggregate result of one context request.
type LoadedContext struct {
	Command      string          `json:"command"`
	Sources      []ContextSource `json:"sources"`
	TotalTokens  int             `json:"total_tokens"`
	AnyTruncated bool            `json:"any_truncated"`
	Dropped      []DroppedSource `json:"dropped,omitempty"`
	Notes        []string        `json:"notes,omitempty"`
	Warning      string          `json:"warning,omitempty"`
	LoadedAt     time.Time       `json:"loaded_at"`
}

// SearchQuery is one interpreted search request. Immutable once built.
type SearchQuery struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QueryType    `json:"type"`
	Terms         []string     `json:"terms,omitempty"`
	Phrase        string       `json:"phrase,omitempty"`
	Pattern       string       `json:"pattern,omitempty"`
	SectionHint   string       `json:"section_hint,omitempty"`
	Filter        SourceFilter `json:"filter"`
	MaxResults    int          `json:"max_results"`
	CaseSensitive bool         `json:"case_sensitive"`
	Regex         bool         `json:"regex"`
	Timestamp     time.Time    `json:"timestamp"`
}

// SearchResult is one line-level match.
type SearchResult struct {
	QueryID     string  `json:"query_id"`
	SourceID    string  `json:"source_id"`
	SourcePath  string  `json:"source_path"`
	Score       float64 `json:"relevance_score"`
	Line        int     `json:"line_number"`
	LineText    string  `json:"line_text,omitempty"`
	MatchedText string  `json:"matched_text"`
	Before      string  `json:"before,omitempty"`
	After       string  `json:"after,omitempty"`
}

// SearchMetadata summarizes one search run.
type SearchMetadata struct {
	TotalResults    int           `json:"total_results"`
	SourcesSearched int           `json:"sources_searched"`
	Elapsed         time.Duration `json:"elapsed"`
}

// SearchResponse is the full outcome of one search request. Per-source
// failures never abort a search; they surface in Diagnostics.
type SearchResponse struct {
	Query       SearchQuery    `json:"query"`
	Results     []SearchResult `json:"results"`
	Metadata    SearchMetadata `json:"metadata"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Warning     string         `json:"warning,omitempty"`
}

// Span is a half-open [Start, End) byte range within snippet text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ContentSnippet is a bounded span of source text prepared for display, with
// highlight offsets into Text. Derived on demand, never persisted.
type ContentSnippet struct {
	Text       string `json:"text"`
	Highlights []Span `json:"highlights,omitempty"`
}

// SearchHistoryEntry summarizes one past query.
type SearchHistoryEntry struct {
	QueryID   string    `json:"query_id"`
	Text      string    `json:"text"`
	Type      QueryType `json:"type"`
	Results   int       `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}

// --- Validation failures ---

// ValidationError reports invalid request input (empty query, bad pattern,
// out-of-range argument). It is the only error class Search and LoadContext
// return for caller mistakes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// invalidf builds a ValidationError for a field.
func invalidf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
