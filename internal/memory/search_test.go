package memory_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HendryAvila/specmem/internal/config"
	"github.com/HendryAvila/specmem/internal/memory"
)

// seedFile writes one project file, creating parent directories.
func seedFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// seedBinary overwrites a project file with bytes that are not UTF-8 text,
// so loading it is forced to skip.
func seedBinary(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}
}

// newAuthProject seeds a project whose wording exercises stemming, phrase
// matching, and section classification.
func newAuthProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	seedFile(t, root, "memory/constitution.md",
		"# Constitution\n\n## Security Principles\n\nEvery request requires authentication before access.\nSee the README for contributor rules.\n")
	seedFile(t, root, "memory/roadmap.md",
		"# Roadmap\n\n## Phase 1\n\n- Ship the payments integration.\n- Improve the readme examples.\n")
	seedFile(t, root, "specs/003-user-auth/spec.md",
		"# Feature: User Authentication\n\n## Summary\n\nUsers must authenticate before accessing projects.\n\n## Requirements\n\n- The system shall hash passwords.\n- Sessions expire after inactivity.\n")
	return root
}

func newTestEngine(t *testing.T, root string, opts memory.Options) *memory.Engine {
	t.Helper()
	e, err := memory.New(root, opts)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return e
}

// ─── Matching across variants ────────────────────────────────────────────────

func TestSearch_KeywordMatchesMorphologicalVariants(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "authentication"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	matched := map[string]bool{}
	for _, r := range resp.Results {
		matched[r.SourceID] = true
	}
	if !matched["memory/constitution"] {
		t.Error("exact word match in the constitution missing")
	}
	if !matched["specs/003-user-auth/spec"] {
		t.Error("stem match (authenticate) in the spec missing")
	}
	for _, r := range resp.Results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("%s:%d score %v out of (0, 1]", r.SourceID, r.Line, r.Score)
		}
		if r.Line < 1 {
			t.Errorf("line number %d is not 1-based", r.Line)
		}
	}
}

func TestSearch_SingleMatchReportsTermAndLine(t *testing.T) {
	root := t.TempDir()
	seedFile(t, root, "memory/constitution.md",
		"# Constitution\n\nUsers must authenticate securely\n")
	e := newTestEngine(t, root, memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "authentication"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	r := resp.Results[0]
	if r.MatchedText != "authentication" {
		t.Errorf("matched text = %q, want the query term", r.MatchedText)
	}
	if r.Line != 3 {
		t.Errorf("line = %d, want 3", r.Line)
	}
}

func TestSearch_PhraseRequiresExactSubstring(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: `"hash passwords"`})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Query.Type != memory.QueryPhrase {
		t.Fatalf("type = %s, want phrase", resp.Query.Type)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want exactly the one phrase line", len(resp.Results))
	}
	if resp.Results[0].SourceID != "specs/003-user-auth/spec" {
		t.Errorf("matched %s, want the spec", resp.Results[0].SourceID)
	}

	// Reordered words must not match as a phrase.
	resp, err = e.Search(memory.SearchRequest{Text: `"passwords hash"`})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("reordered phrase matched %d lines, want 0", len(resp.Results))
	}
}

func TestSearch_NaturalQueryBiasesRequirements(t *testing.T) {
	root := t.TempDir()
	seedFile(t, root, "memory/constitution.md",
		"# Constitution\n\n## Summary\n\nAuthentication flows overview.\n\n## Requirements\n\nAuthentication handling must retry.\n")
	e := newTestEngine(t, root, memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "how does authentication work?"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Query.Type != memory.QueryNatural {
		t.Fatalf("type = %s, want natural", resp.Query.Type)
	}
	if len(resp.Results) < 2 {
		t.Fatalf("got %d results, want both section lines", len(resp.Results))
	}
	if resp.Results[0].Line != 9 {
		t.Errorf("top result at line %d; the requirements line should win under a 'how' hint", resp.Results[0].Line)
	}
}

func TestSearch_CaseSensitiveIsExact(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "README", CaseSensitive: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want only the exact-case line", len(resp.Results))
	}
	if resp.Results[0].SourceID != "memory/constitution" {
		t.Errorf("matched %s, want memory/constitution", resp.Results[0].SourceID)
	}

	resp, err = e.Search(memory.SearchRequest{Text: "README"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("folded search got %d results, want both casings", len(resp.Results))
	}
}

func TestSearch_RegexMode(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: `auth\w+`, Regex: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("regex should match authentication lines")
	}
	for _, r := range resp.Results {
		if r.MatchedText == "" {
			t.Error("regex results should carry the matched substring")
		}
	}
}

func TestSearch_InvalidRegexFailsValidation(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	_, err := e.Search(memory.SearchRequest{Text: "[invalid(", Regex: true})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var verr *memory.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error %T is not a ValidationError", err)
	}
}

// ─── Result shape ────────────────────────────────────────────────────────────

func TestSearch_ResultsCarryContext(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: `"hash passwords"`})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	r := resp.Results[0]
	if r.Before == "" {
		t.Error("result should carry preceding context lines")
	}
	if r.After == "" {
		t.Error("result should carry following context lines")
	}
	if r.LineText == "" || r.MatchedText == "" {
		t.Error("result should carry its line and matched text")
	}
}

func TestSearch_OrderedByScoreThenPathThenLine(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "the"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 1; i < len(resp.Results); i++ {
		a, b := resp.Results[i-1], resp.Results[i]
		switch {
		case a.Score > b.Score:
		case a.Score == b.Score && a.SourcePath < b.SourcePath:
		case a.Score == b.Score && a.SourcePath == b.SourcePath && a.Line < b.Line:
		default:
			t.Fatalf("results out of order at %d: (%v,%s,%d) before (%v,%s,%d)",
				i, a.Score, a.SourceID, a.Line, b.Score, b.SourceID, b.Line)
		}
	}
}

func TestSearch_Deterministic(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	first, err := e.Search(memory.SearchRequest{Text: "auth"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := e.Search(memory.SearchRequest{Text: "auth"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(first.Results) != len(second.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.SourceID != b.SourceID || a.Line != b.Line || a.Score != b.Score {
			t.Errorf("result %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestSearch_MaxResultsBoundsOutput(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "the", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("got %d results, want 2", len(resp.Results))
	}
	if resp.Metadata.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want the returned count", resp.Metadata.TotalResults)
	}
}

func TestSearch_SourceFilter(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "authentication", Filter: "GOVERNANCE"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range resp.Results {
		if r.SourceID == "specs/003-user-auth/spec" {
			t.Error("governance filter must exclude specs")
		}
	}
	if resp.Metadata.SourcesSearched != 2 {
		t.Errorf("SourcesSearched = %d, want the two governance files", resp.Metadata.SourcesSearched)
	}
}

// ─── Failure isolation ───────────────────────────────────────────────────────

func TestSearch_EmptyProject(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "anything"})
	if err != nil {
		t.Fatalf("search over an empty project should succeed: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("got %d results, want 0", len(resp.Results))
	}
	if resp.Metadata.SourcesSearched != 0 {
		t.Errorf("SourcesSearched = %d, want 0", resp.Metadata.SourcesSearched)
	}
}

func TestSearch_SkipsUnreadableSourceAndContinues(t *testing.T) {
	root := newAuthProject(t)
	seedBinary(t, root, "memory/roadmap.md")
	e := newTestEngine(t, root, memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "authentication"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want one skip entry", resp.Diagnostics)
	}
	if resp.Metadata.SourcesSearched != 2 {
		t.Errorf("SourcesSearched = %d, want the two readable sources", resp.Metadata.SourcesSearched)
	}
	if len(resp.Results) == 0 {
		t.Error("readable sources should still produce results")
	}
}

// ─── History ─────────────────────────────────────────────────────────────────

func TestSearch_RecordsHistory(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	for _, text := range []string{"auth", "payments", "sessions"} {
		if _, err := e.Search(memory.SearchRequest{Text: text}); err != nil {
			t.Fatalf("Search(%q): %v", text, err)
		}
	}

	if got := e.History().Len(); got != 3 {
		t.Fatalf("history length = %d, want 3", got)
	}
	recent := e.History().Recent(1)
	if len(recent) != 1 || recent[0].Text != "sessions" {
		t.Errorf("most recent = %+v, want the last query", recent)
	}
}

func TestSearch_InvalidQueriesNotRecorded(t *testing.T) {
	e := newTestEngine(t, newAuthProject(t), memory.Options{})

	if _, err := e.Search(memory.SearchRequest{Text: ""}); err == nil {
		t.Fatal("empty query should fail")
	}
	if got := e.History().Len(); got != 0 {
		t.Errorf("history length = %d, want 0 after a rejected query", got)
	}
}

// ─── Configuration surfacing ─────────────────────────────────────────────────

func TestSearch_SurfacesConfigWarning(t *testing.T) {
	root := newAuthProject(t)
	seedFile(t, root, "memory/config.json", "{not valid json")
	e := newTestEngine(t, root, memory.Options{})

	resp, err := e.Search(memory.SearchRequest{Text: "auth"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Warning == "" {
		t.Error("corrupt config should surface as a warning on the response")
	}
	if e.Config().Budget.GlobalTokens != config.DefaultGlobalTokens {
		t.Error("corrupt config should fall back to defaults")
	}
}
