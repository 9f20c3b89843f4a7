package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// tokenDivisor converts character counts to approximate tokens. Rough
// heuristic: ~4 characters per token for English text and markdown.
const tokenDivisor = 4

// EstimateTokens approximates the token cost of text. Deterministic and
// O(1) on the string length; budgeting only, not exact tokenization.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len(text) / tokenDivisor
	if tokens == 0 {
		return 1
	}
	return tokens
}

// ElisionMarker is inserted where truncation removed content.
const ElisionMarker = "[...truncated]"

// elisionJoiner places the marker on its own line between head and tail.
const elisionJoiner = "\n" + ElisionMarker + "\n"

const (
	// headRatioPct of the truncation budget goes to the head portion; the
	// remainder keeps the tail so closing sections survive.
	headRatioPct = 80
	// minTruncatedChars is the floor below which a truncated source is
	// never squeezed, whatever the ceiling says.
	minTruncatedChars = 48
)

// Loader reads source content under a token ceiling. All per-source
// failures are absorbed into a skipped outcome with a diagnostic; Load never
// returns an error.
type Loader struct {
	root string
}

// NewLoader creates a loader that refuses to read outside projectRoot.
func NewLoader(projectRoot string) *Loader {
	return &Loader{root: projectRoot}
}

// Load reads a source's text, estimates its token cost, and truncates to
// tokenCeiling (no ceiling when <= 0). The returned ContextSource is always
// in a terminal state: ready, or skipped with a diagnostic.
func (l *Loader) Load(src MemorySource, tokenCeiling int) *ContextSource {
	cs := &ContextSource{MemorySource: src, State: StatePending}
	cs.transition(StateLoading)

	// A resolved path escaping the project root is the one unrecoverable
	// condition; it surfaces as skipped, never as a fault.
	if !withinRoot(l.root, src.Path) {
		cs.transition(StateError)
		cs.Diagnostic = fmt.Sprintf("path %s escapes project root", src.Path)
		cs.transition(StateSkipped)
		return cs
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		cs.Diagnostic = fmt.Sprintf("reading %s: %v", src.ID, err)
		cs.transition(StateSkipped)
		return cs
	}
	if !utf8.Valid(data) {
		cs.Diagnostic = fmt.Sprintf("%s is not valid UTF-8 text", src.ID)
		cs.transition(StateSkipped)
		return cs
	}

	text := string(data)
	tokens := EstimateTokens(text)
	cs.Lines = countLines(text)
	cs.EstimatedTokens = tokens
	cs.transition(StateLoaded)

	if tokenCeiling > 0 && tokens > tokenCeiling {
		cs.Content = truncateHeadTail(text, tokenCeiling)
		cs.Tokens = EstimateTokens(cs.Content)
		cs.Truncated = true
		cs.OriginalTokens = tokens
		cs.transition(StateTruncated)
	} else {
		cs.Content = text
		cs.Tokens = tokens
	}

	cs.transition(StateReady)
	return cs
}

// transition advances the load state machine, ignoring illegal moves so a
// source can never leave a load in a non-terminal state.
func (cs *ContextSource) transition(to LoadState) {
	if CanTransition(cs.State, to) {
		cs.State = to
	}
}

// truncateHeadTail keeps the head and tail of text under a token ceiling,
// joined by the elision marker. The head/tail split follows headRatioPct.
func truncateHeadTail(text string, tokenCeiling int) string {
	avail := tokenCeiling*tokenDivisor - len(elisionJoiner)
	if avail < minTruncatedChars {
		avail = minTruncatedChars
	}
	headBudget := avail * headRatioPct / 100
	tailBudget := avail - headBudget

	head := cutHead(text, headBudget)
	tail := cutTail(text, tailBudget)
	return head + elisionJoiner + tail
}

// cutHead returns at most budget bytes from the start of s, preferring a
// line boundary when one falls in the second half of the budget.
func cutHead(s string, budget int) string {
	if budget >= len(s) {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if idx := strings.LastIndex(s[:cut], "\n"); idx > budget/2 {
		return s[:idx]
	}
	return s[:cut]
}

// cutTail returns at most budget bytes from the end of s, preferring to
// start on a line boundary when one falls in the first half of the budget.
func cutTail(s string, budget int) string {
	if budget >= len(s) {
		return s
	}
	start := len(s) - budget
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	if idx := strings.Index(s[start:], "\n"); idx >= 0 && idx < budget/2 {
		return s[start+idx+1:]
	}
	return s[start:]
}

// withinRoot reports whether path resolves inside root.
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
