package memory

import (
	"sort"
	"strings"
)

// contextRadius is how many lines of surrounding context a result carries
// on each side.
const contextRadius = 3

// SearchRequest carries the raw arguments of one search call, before
// interpretation.
type SearchRequest struct {
	Text          string
	Type          string
	Filter        string
	MaxResults    int
	CaseSensitive bool
	Regex         bool
}

// Search runs one request end to end: interpret the query, resolve and load
// the admitted sources, match line by line, score, rank, bound, and record
// the query in history. Zero matches is a normal outcome; the metadata still
// reports how many sources were searched. Only invalid input returns an
// error, always a *ValidationError.
func (e *Engine) Search(req SearchRequest) (*SearchResponse, error) {
	started := timeNow()

	q, err := Interpret(e.cfg, req)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{Query: *q, Warning: e.warning}
	for _, src := range e.catalog.Sources(q.Filter) {
		cs := e.loader.Load(src, e.cfg.Budget.PerSourceTokens)
		if !cs.Loaded() {
			if cs.Diagnostic != "" {
				resp.Diagnostics = append(resp.Diagnostics, cs.Diagnostic)
			}
			continue
		}
		resp.Metadata.SourcesSearched++
		resp.Results = append(resp.Results, matchSource(q, cs)...)
	}

	sort.SliceStable(resp.Results, func(i, j int) bool {
		a, b := resp.Results[i], resp.Results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		return a.Line < b.Line
	})
	if len(resp.Results) > q.MaxResults {
		resp.Results = resp.Results[:q.MaxResults]
	}

	resp.Metadata.TotalResults = len(resp.Results)
	resp.Metadata.Elapsed = timeNow().Sub(started)

	e.history.Record(SearchHistoryEntry{
		QueryID:   q.ID,
		Text:      q.Text,
		Type:      q.Type,
		Results:   len(resp.Results),
		Timestamp: q.Timestamp,
	})

	return resp, nil
}

// matchSource scans one loaded source line by line and returns a result per
// matching line.
func matchSource(q *SearchQuery, cs *ContextSource) []SearchResult {
	lines := strings.Split(cs.Content, "\n")
	profile := BuildProfile(cs.Content)

	var results []SearchResult
	appendMatch := func(lineIdx int, matched string, scoringTerms []string) {
		n := lineIdx + 1
		results = append(results, SearchResult{
			QueryID:     q.ID,
			SourceID:    cs.ID,
			SourcePath:  cs.Path,
			Score:       Score(profile, n, scoringTerms, q.SectionHint),
			Line:        n,
			LineText:    lines[lineIdx],
			MatchedText: matched,
			Before:      joinContext(lines, lineIdx-contextRadius, lineIdx),
			After:       joinContext(lines, lineIdx+1, lineIdx+1+contextRadius),
		})
	}

	switch q.Type {
	case QueryRegex:
		re, err := compilePattern(q)
		if err != nil {
			return nil
		}
		for i, line := range lines {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			matched := line[loc[0]:loc[1]]
			term := matched
			if term == "" {
				term = q.Pattern
			}
			appendMatch(i, matched, []string{term})
		}

	case QueryPhrase:
		for i, line := range lines {
			if containsText(line, q.Phrase, q.CaseSensitive) {
				appendMatch(i, q.Phrase, q.Terms)
			}
		}

	default: // keyword and natural queries match per term
		if len(q.Terms) == 0 {
			return nil
		}
		for i, line := range lines {
			if matched, ok := firstMatchingTerm(line, q.Terms, q.CaseSensitive); ok {
				appendMatch(i, matched, q.Terms)
			}
		}
	}

	return results
}

// firstMatchingTerm returns the first query term that matches the line.
func firstMatchingTerm(line string, terms []string, caseSensitive bool) (string, bool) {
	for _, term := range terms {
		if lineMatchesTerm(line, term, caseSensitive) {
			return term, true
		}
	}
	return "", false
}

// lineMatchesTerm reports whether a line matches one term. Case-sensitive
// matching is pure substring containment; the default folded mode also
// accepts a word that shares the term's stem, so "authentication" finds
// "authenticate".
func lineMatchesTerm(line, term string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(line, term)
	}
	if strings.Contains(strings.ToLower(line), strings.ToLower(term)) {
		return true
	}
	for _, word := range strings.Fields(line) {
		if termMatchesWord(term, word) {
			return true
		}
	}
	return false
}

// containsText is substring containment with optional case folding.
func containsText(haystack, needle string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(haystack, needle)
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// joinContext joins lines[from:to), clamped to valid bounds.
func joinContext(lines []string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return ""
	}
	return strings.Join(lines[from:to], "\n")
}
