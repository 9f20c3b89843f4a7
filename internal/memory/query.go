package memory

import (
	"regexp"
	"strings"

	"github.com/HendryAvila/specmem/internal/config"
	"github.com/google/uuid"
)

const (
	// maxQueryLength bounds raw query text.
	maxQueryLength = 500
	// defaultMaxResults applies when a request leaves max_results unset.
	defaultMaxResults = 20
	// hardMaxResults is the cap no request can exceed.
	hardMaxResults = 100
)

// naturalLeads are words that mark a leading-interrogative query.
var naturalLeads = map[string]bool{
	"what": true, "why": true, "how": true, "who": true, "which": true,
	"when": true, "where": true, "can": true, "could": true, "should": true,
	"would": true, "will": true, "do": true, "does": true, "did": true,
	"is": true, "are": true, "was": true, "were": true,
}

// wordTrimCutset strips punctuation hugging a token.
const wordTrimCutset = ".,;:!?\"'()[]{}#*`-"

// Interpret validates a raw search request and classifies it into an
// immutable SearchQuery. Classification priority: explicit regex flag,
// explicit query type, quoted phrase, interrogative phrasing, keyword.
// Invalid input returns a *ValidationError, never a panic.
func Interpret(cfg *config.Config, req SearchRequest) (*SearchQuery, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, invalidf("query", "text is required")
	}
	if len(text) > maxQueryLength {
		return nil, invalidf("query", "text exceeds %d characters", maxQueryLength)
	}

	filter, err := ParseFilter(req.Filter)
	if err != nil {
		return nil, invalidf("source_filter", "%q is not one of ALL, GOVERNANCE, SPEC", req.Filter)
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > hardMaxResults {
		maxResults = hardMaxResults
	}

	qt, err := classify(text, req)
	if err != nil {
		return nil, err
	}

	q := &SearchQuery{
		ID:            uuid.NewString(),
		Text:          text,
		Type:          qt,
		Filter:        filter,
		MaxResults:    maxResults,
		CaseSensitive: req.CaseSensitive,
		Regex:         qt == QueryRegex,
		Timestamp:     timeNow().UTC(),
	}

	switch qt {
	case QueryRegex:
		q.Pattern = text
		if _, err := compilePattern(q); err != nil {
			return nil, invalidf("query", "invalid regex pattern: %v", err)
		}
	case QueryPhrase:
		q.Phrase = stripQuotes(text)
		if strings.TrimSpace(q.Phrase) == "" {
			return nil, invalidf("query", "phrase is empty")
		}
		q.Terms = strings.Fields(q.Phrase)
	case QueryNatural:
		q.Terms = naturalTerms(cfg, text)
		q.SectionHint = sectionHintFor(cfg, text)
	default:
		q.Terms = strings.Fields(text)
	}

	return q, nil
}

// classify picks the query type. The explicit regex flag wins over an
// explicit type, which wins over the quoted-phrase and natural-language
// heuristics; everything else is a keyword query.
func classify(text string, req SearchRequest) (QueryType, error) {
	if req.Regex {
		return QueryRegex, nil
	}
	if req.Type != "" {
		qt, err := ParseQueryType(req.Type)
		if err != nil {
			return "", invalidf("query_type", "%v", err)
		}
		return qt, nil
	}
	if isQuoted(text) {
		return QueryPhrase, nil
	}
	if isNatural(text) {
		return QueryNatural, nil
	}
	return QueryKeyword, nil
}

// isQuoted reports whether the whole text is wrapped in matching quotes.
func isQuoted(text string) bool {
	if len(text) < 2 {
		return false
	}
	first, last := text[0], text[len(text)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}

// stripQuotes removes one layer of matching quotes.
func stripQuotes(text string) string {
	if isQuoted(text) {
		return text[1 : len(text)-1]
	}
	return text
}

// isNatural reports whether text reads as a question: a leading
// interrogative word or a trailing question mark.
func isNatural(text string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	fields := strings.Fields(strings.ToLower(text))
	return len(fields) > 0 && naturalLeads[fields[0]]
}

// naturalTerms strips stop words from a natural-language query and keeps
// the remaining tokens as search terms. A query made entirely of stop words
// falls back to its raw tokens so that it still searches something.
func naturalTerms(cfg *config.Config, text string) []string {
	stop := cfg.StopWordSet()
	trimmed := strings.TrimSuffix(text, "?")
	var terms []string
	for _, field := range strings.Fields(trimmed) {
		word := strings.Trim(field, wordTrimCutset)
		if word == "" || len(word) < 3 || stop[strings.ToLower(word)] {
			continue
		}
		terms = append(terms, word)
	}
	if len(terms) == 0 {
		for _, field := range strings.Fields(trimmed) {
			if word := strings.Trim(field, wordTrimCutset); word != "" {
				terms = append(terms, word)
			}
		}
	}
	return terms
}

// sectionHintFor maps the leading interrogative to a section hint, when the
// configuration's hint table knows it.
func sectionHintFor(cfg *config.Config, text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	hint, ok := cfg.SectionHint(strings.Trim(fields[0], wordTrimCutset))
	if !ok {
		return ""
	}
	return hint
}

// compilePattern compiles a regex query, folding case unless the query asks
// for case sensitivity. Keyword, phrase, and natural queries never reach
// the regexp engine — their matching is literal, so metacharacters in them
// need no escaping.
func compilePattern(q *SearchQuery) (*regexp.Regexp, error) {
	pattern := q.Pattern
	if !q.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
