package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// snippetMaxLen bounds display snippets.
const snippetMaxLen = 1000

// ─── Search rendering ────────────────────────────────────────────────────────

// FormatSearchResults renders a search response as human-readable markdown.
func FormatSearchResults(resp *SearchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Search: %s\n\n", resp.Query.Text)
	if resp.Warning != "" {
		fmt.Fprintf(&b, "⚠️ %s\n\n", resp.Warning)
	}

	if len(resp.Results) == 0 {
		fmt.Fprintf(&b, "No matches. Searched %d sources.\n", resp.Metadata.SourcesSearched)
		writeDiagnostics(&b, resp.Diagnostics)
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d matches across %d sources (%s query):\n\n",
		resp.Metadata.TotalResults, resp.Metadata.SourcesSearched, resp.Query.Type)

	for i, r := range resp.Results {
		fmt.Fprintf(&b, "[%d] %s:%d (score %.2f)\n", i+1, r.SourceID, r.Line, r.Score)
		snippet := Snippet(r.LineText, r.MatchedText, resp.Query.CaseSensitive)
		fmt.Fprintf(&b, "    %s\n\n", emphasize(snippet))
	}

	writeDiagnostics(&b, resp.Diagnostics)
	fmt.Fprintf(&b, "📊 %d results | %d sources searched | %s\n",
		resp.Metadata.TotalResults, resp.Metadata.SourcesSearched,
		resp.Metadata.Elapsed.Round(time.Millisecond))
	return b.String()
}

func writeDiagnostics(b *strings.Builder, diags []string) {
	for _, d := range diags {
		fmt.Fprintf(b, "⚠️ skipped: %s\n", d)
	}
	if len(diags) > 0 {
		b.WriteString("\n")
	}
}

// Snippet prepares one line for display: bounded to snippetMaxLen and
// annotated with the highlight span of the matched text. When the match was
// a stem match, the matching word is highlighted instead.
func Snippet(line, matched string, caseSensitive bool) ContentSnippet {
	idx, matchLen := -1, len(matched)
	if matched != "" {
		if caseSensitive {
			idx = strings.Index(line, matched)
		} else {
			idx = strings.Index(strings.ToLower(line), strings.ToLower(matched))
		}
	}
	if idx < 0 && matched != "" {
		// The term may have matched by stem; highlight the word that did.
		offset := 0
		for _, word := range strings.Split(line, " ") {
			if termMatchesWord(matched, word) {
				idx, matchLen = offset, len(word)
				break
			}
			offset += len(word) + 1
		}
	}

	if len(line) <= snippetMaxLen {
		sn := ContentSnippet{Text: line}
		if idx >= 0 {
			sn.Highlights = []Span{{Start: idx, End: idx + matchLen}}
		}
		return sn
	}

	// Window the snippet around the match, or the head when there is none.
	start := 0
	if idx > snippetMaxLen/2 {
		start = idx - snippetMaxLen/2
	}
	end := start + snippetMaxLen
	if end > len(line) {
		end = len(line)
		start = end - snippetMaxLen
	}
	sn := ContentSnippet{Text: line[start:end]}
	if idx >= start && idx+matchLen <= end {
		sn.Highlights = []Span{{Start: idx - start, End: idx - start + matchLen}}
	}
	return sn
}

// emphasize renders a snippet with its highlight spans in bold.
func emphasize(sn ContentSnippet) string {
	if len(sn.Highlights) == 0 {
		return sn.Text
	}
	var b strings.Builder
	last := 0
	for _, span := range sn.Highlights {
		if span.Start < last || span.End > len(sn.Text) {
			continue
		}
		b.WriteString(sn.Text[last:span.Start])
		b.WriteString("**")
		b.WriteString(sn.Text[span.Start:span.End])
		b.WriteString("**")
		last = span.End
	}
	b.WriteString(sn.Text[last:])
	return b.String()
}

// ─── Context rendering ───────────────────────────────────────────────────────

// FormatContext renders a loaded context as markdown, one section per
// source, with a token footer.
func FormatContext(lc *LoadedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Memory Context: %s\n\n", lc.Command)
	if lc.Warning != "" {
		fmt.Fprintf(&b, "⚠️ %s\n\n", lc.Warning)
	}

	for _, cs := range lc.Sources {
		if !cs.Loaded() {
			fmt.Fprintf(&b, "## %s (%s) — skipped\n\n%s\n\n", cs.Kind, cs.ID, cs.Diagnostic)
			continue
		}
		fmt.Fprintf(&b, "## %s (%s) — ~%d tokens", cs.Kind, cs.ID, cs.Tokens)
		if cs.Truncated {
			fmt.Fprintf(&b, " (truncated from ~%d)", cs.OriginalTokens)
		}
		b.WriteString("\n\n")
		b.WriteString(cs.Content)
		if !strings.HasSuffix(cs.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, d := range lc.Dropped {
		fmt.Fprintf(&b, "⚠️ dropped %s: %s\n", d.ID, d.Reason)
	}
	for _, note := range lc.Notes {
		fmt.Fprintf(&b, "ℹ️ %s\n", note)
	}
	if len(lc.Dropped) > 0 || len(lc.Notes) > 0 {
		b.WriteString("\n")
	}

	truncated := "no"
	if lc.AnyTruncated {
		truncated = "yes"
	}
	fmt.Fprintf(&b, "📊 Total: ~%d tokens | %d sources | truncated: %s\n",
		lc.TotalTokens, len(lc.Sources), truncated)
	return b.String()
}

// ─── Catalog, related, history rendering ─────────────────────────────────────

// FormatSources renders a catalog listing.
func FormatSources(sources []MemorySource) string {
	if len(sources) == 0 {
		return "No memory sources found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Memory sources (%d):\n\n", len(sources))
	for _, src := range sources {
		fmt.Fprintf(&b, "- %s (%s) — %d lines, ~%d tokens\n",
			src.ID, src.Class, src.Lines, src.EstimatedTokens)
	}
	return b.String()
}

// FormatRelated renders the related-spec listing for a current feature.
func FormatRelated(current *MemorySource, related []MemorySource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current feature: %s\n\n", current.ID)
	if len(related) == 0 {
		b.WriteString("No related specifications found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Related specifications (%d):\n", len(related))
	for i, src := range related {
		fmt.Fprintf(&b, "[%d] %s (~%d tokens)\n", i+1, src.ID, src.EstimatedTokens)
	}
	return b.String()
}

// FormatHistory renders recent searches, newest first.
func FormatHistory(entries []SearchHistoryEntry) string {
	if len(entries) == 0 {
		return "No searches recorded this session.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent searches (%d):\n\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&b, "[%d] %q (%s) — %d results at %s\n",
			i+1, entry.Text, entry.Type, entry.Results,
			entry.Timestamp.Format("15:04:05"))
	}
	return b.String()
}

// ─── Machine-readable export ─────────────────────────────────────────────────

type exportQuery struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type exportSource struct {
	Path string `json:"path"`
}

type exportResult struct {
	Source         exportSource `json:"source"`
	RelevanceScore float64      `json:"relevance_score"`
	LineNumber     int          `json:"line_number"`
	MatchedText    string       `json:"matched_text"`
}

type exportMetadata struct {
	TotalResults int `json:"total_results"`
}

type searchExport struct {
	Query    exportQuery    `json:"query"`
	Results  []exportResult `json:"results"`
	Metadata exportMetadata `json:"metadata"`
}

// ExportJSON renders a search response in the stable machine-readable shape
// consumed by export collaborators.
func ExportJSON(resp *SearchResponse) ([]byte, error) {
	exp := searchExport{
		Query:    exportQuery{Text: resp.Query.Text, Type: string(resp.Query.Type)},
		Results:  make([]exportResult, 0, len(resp.Results)),
		Metadata: exportMetadata{TotalResults: resp.Metadata.TotalResults},
	}
	for _, r := range resp.Results {
		exp.Results = append(exp.Results, exportResult{
			Source:         exportSource{Path: r.SourcePath},
			RelevanceScore: r.Score,
			LineNumber:     r.Line,
			MatchedText:    r.MatchedText,
		})
	}
	return json.MarshalIndent(exp, "", "  ")
}
