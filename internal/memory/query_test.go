package memory

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/specmem/internal/config"
)

// frozenNow pins the package clock so timestamp assertions hold.
var frozenNow = time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time { return frozenNow }
}

func interpret(t *testing.T, req SearchRequest) *SearchQuery {
	t.Helper()
	q, err := Interpret(config.Default(), req)
	if err != nil {
		t.Fatalf("Interpret(%+v): %v", req, err)
	}
	return q
}

// ─── Classification ──────────────────────────────────────────────────────────

func TestInterpret_Classification(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
		want QueryType
	}{
		{"plain keyword", SearchRequest{Text: "authentication"}, QueryKeyword},
		{"multiple keywords", SearchRequest{Text: "user auth flow"}, QueryKeyword},
		{"double quoted", SearchRequest{Text: `"token validation"`}, QueryPhrase},
		{"single quoted", SearchRequest{Text: "'token validation'"}, QueryPhrase},
		{"leading interrogative", SearchRequest{Text: "how does auth work"}, QueryNatural},
		{"trailing question mark", SearchRequest{Text: "auth retries allowed?"}, QueryNatural},
		{"regex flag", SearchRequest{Text: "auth.*flow", Regex: true}, QueryRegex},
		{"explicit type", SearchRequest{Text: "how does auth work", Type: "keyword"}, QueryKeyword},
		{"regex flag beats explicit type", SearchRequest{Text: "auth", Type: "phrase", Regex: true}, QueryRegex},
		{"explicit type beats quotes", SearchRequest{Text: `"auth"`, Type: "keyword"}, QueryKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := interpret(t, tt.req)
			if q.Type != tt.want {
				t.Errorf("type = %s, want %s", q.Type, tt.want)
			}
		})
	}
}

func TestInterpret_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
	}{
		{"empty text", SearchRequest{Text: ""}},
		{"whitespace only", SearchRequest{Text: "   \t  "}},
		{"too long", SearchRequest{Text: strings.Repeat("a", 501)}},
		{"bad query type", SearchRequest{Text: "auth", Type: "fuzzy"}},
		{"bad filter", SearchRequest{Text: "auth", Filter: "EVERYTHING"}},
		{"unbalanced bracket regex", SearchRequest{Text: "[invalid(", Regex: true}},
		{"empty phrase", SearchRequest{Text: `""`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpret(config.Default(), tt.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %T is not a ValidationError", err)
			}
		})
	}
}

func TestInterpret_InvalidRegexMessage(t *testing.T) {
	_, err := Interpret(config.Default(), SearchRequest{Text: "[invalid(", Regex: true})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid regex pattern") {
		t.Errorf("error %q should explain the pattern is invalid", err)
	}
}

// ─── Per-type interpretation ─────────────────────────────────────────────────

func TestInterpret_KeywordTerms(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "user auth flow"})
	want := []string{"user", "auth", "flow"}
	if len(q.Terms) != len(want) {
		t.Fatalf("terms = %v, want %v", q.Terms, want)
	}
	for i := range want {
		if q.Terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, q.Terms[i], want[i])
		}
	}
}

func TestInterpret_PhraseStripsQuotes(t *testing.T) {
	q := interpret(t, SearchRequest{Text: `"token validation"`})
	if q.Phrase != "token validation" {
		t.Errorf("phrase = %q, want %q", q.Phrase, "token validation")
	}
	if len(q.Terms) != 2 {
		t.Errorf("phrase terms = %v, want the phrase's words", q.Terms)
	}
}

func TestInterpret_NaturalStripsStopWords(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "How do we handle user authentication?"})

	if q.Type != QueryNatural {
		t.Fatalf("type = %s, want natural", q.Type)
	}
	got := map[string]bool{}
	for _, term := range q.Terms {
		got[strings.ToLower(term)] = true
	}
	for _, banned := range []string{"how", "do", "we"} {
		if got[banned] {
			t.Errorf("stop word %q survived: %v", banned, q.Terms)
		}
	}
	for _, kept := range []string{"handle", "user", "authentication"} {
		if !got[kept] {
			t.Errorf("term %q missing: %v", kept, q.Terms)
		}
	}
}

func TestInterpret_NaturalAllStopWordsFallsBack(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "what about that?"})
	if len(q.Terms) == 0 {
		t.Error("an all-stop-word question should fall back to raw tokens")
	}
}

func TestInterpret_SectionHints(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"what is the project vision?", "summary"},
		{"why does this exist?", "summary"},
		{"how does auth work?", "requirements"},
		{"which endpoints need tokens?", "requirements"},
		{"auth retries allowed?", ""}, // question mark alone carries no hint
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q := interpret(t, SearchRequest{Text: tt.text})
			if q.SectionHint != tt.want {
				t.Errorf("hint = %q, want %q", q.SectionHint, tt.want)
			}
		})
	}
}

func TestInterpret_KeywordHasNoHint(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "authentication tokens"})
	if q.SectionHint != "" {
		t.Errorf("keyword query hint = %q, want none", q.SectionHint)
	}
}

// ─── Limits and flags ────────────────────────────────────────────────────────

func TestInterpret_MaxResultsClamped(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 20},
		{-5, 20},
		{7, 7},
		{100, 100},
		{500, 100},
	}

	for _, tt := range tests {
		q := interpret(t, SearchRequest{Text: "auth", MaxResults: tt.in})
		if q.MaxResults != tt.want {
			t.Errorf("MaxResults(%d) = %d, want %d", tt.in, q.MaxResults, tt.want)
		}
	}
}

func TestInterpret_FilterParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want SourceFilter
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{"GOVERNANCE", FilterGovernance},
		{"spec", FilterSpec},
	}

	for _, tt := range tests {
		q := interpret(t, SearchRequest{Text: "auth", Filter: tt.raw})
		if q.Filter != tt.want {
			t.Errorf("filter %q = %s, want %s", tt.raw, q.Filter, tt.want)
		}
	}
}

func TestInterpret_FlagsPropagate(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "README", CaseSensitive: true})
	if !q.CaseSensitive {
		t.Error("case sensitivity should propagate")
	}
	if q.Regex {
		t.Error("regex flag should stay off")
	}

	q = interpret(t, SearchRequest{Text: "auth.*", Regex: true})
	if !q.Regex || q.Pattern != "auth.*" {
		t.Errorf("regex query should keep its pattern; got regex=%v pattern=%q", q.Regex, q.Pattern)
	}
}

func TestInterpret_AssignsUniqueIDs(t *testing.T) {
	a := interpret(t, SearchRequest{Text: "auth"})
	b := interpret(t, SearchRequest{Text: "auth"})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("queries should get distinct non-empty IDs; got %q and %q", a.ID, b.ID)
	}
}

func TestInterpret_StampsQueryTime(t *testing.T) {
	q := interpret(t, SearchRequest{Text: "auth"})
	if !q.Timestamp.Equal(frozenNow) {
		t.Errorf("timestamp = %v, want %v", q.Timestamp, frozenNow)
	}
}

func TestParseQueryType(t *testing.T) {
	for _, raw := range []string{"keyword", "phrase", "regex", "natural", "KEYWORD"} {
		if _, err := ParseQueryType(raw); err != nil {
			t.Errorf("ParseQueryType(%q) unexpected error: %v", raw, err)
		}
	}
	if _, err := ParseQueryType("fuzzy"); err == nil {
		t.Error("ParseQueryType(\"fuzzy\") should fail")
	}
}

func TestParseFilter(t *testing.T) {
	if _, err := ParseFilter("nonsense"); err == nil {
		t.Error("ParseFilter(\"nonsense\") should fail")
	}
	f, err := ParseFilter("")
	if err != nil || f != FilterAll {
		t.Errorf("ParseFilter(\"\") = %v, %v; want ALL, nil", f, err)
	}
}
