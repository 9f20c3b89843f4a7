package memory

import "strings"

// Scoring weights. The three components are each normalized to [0, 1], so
// the combined score is too.
const (
	weightTermFrequency = 0.5
	weightPosition      = 0.3
	weightSection       = 0.2

	headingPosition = 1.0
	earlyPosition   = 0.5
	latePosition    = 0.3

	fullSectionBonus = 1.0
	halfSectionBonus = 0.5

	// earlyDocumentLines is the cutoff for the higher position weight.
	earlyDocumentLines = 100
)

// Section classes a heading can map to.
const (
	sectionSummary      = "summary"
	sectionRequirements = "requirements"
)

// summaryHeadings and requirementHeadings classify section headings by
// substring, case-folded.
var (
	summaryHeadings     = []string{"summary", "overview", "vision", "goal", "purpose"}
	requirementHeadings = []string{"requirement", "user stor", "acceptance", "criteria", "functional"}
)

// DocProfile is the precomputed scoring view of one document: which lines
// are headings, which section class each line falls under, and the total
// word count. Building it does no I/O, so scoring stays a pure function of
// text and terms.
type DocProfile struct {
	lines      []string
	headings   []bool
	sections   []string
	totalWords int
	tf         map[string]float64
}

// BuildProfile precomputes scoring data for a document.
func BuildProfile(text string) *DocProfile {
	lines := strings.Split(text, "\n")
	p := &DocProfile{
		lines:    lines,
		headings: make([]bool, len(lines)),
		sections: make([]string, len(lines)),
		tf:       make(map[string]float64),
	}
	section := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			p.headings[i] = true
			section = classifySection(trimmed)
		}
		p.sections[i] = section
		p.totalWords += len(strings.Fields(line))
	}
	return p
}

// LineCount returns the number of lines in the profiled document.
func (p *DocProfile) LineCount() int {
	return len(p.lines)
}

// Line returns the 1-based line, or "" when out of range.
func (p *DocProfile) Line(n int) string {
	if n < 1 || n > len(p.lines) {
		return ""
	}
	return p.lines[n-1]
}

// Heading reports whether the 1-based line is a markdown heading.
func (p *DocProfile) Heading(n int) bool {
	if n < 1 || n > len(p.headings) {
		return false
	}
	return p.headings[n-1]
}

// SectionAt returns the section class ("summary", "requirements", or "")
// the 1-based line falls under.
func (p *DocProfile) SectionAt(n int) string {
	if n < 1 || n > len(p.sections) {
		return ""
	}
	return p.sections[n-1]
}

// classifySection maps a heading line to its section class.
func classifySection(heading string) string {
	h := strings.ToLower(heading)
	for _, marker := range summaryHeadings {
		if strings.Contains(h, marker) {
			return sectionSummary
		}
	}
	for _, marker := range requirementHeadings {
		if strings.Contains(h, marker) {
			return sectionRequirements
		}
	}
	return ""
}

// Score computes the relevance of a match at the 1-based line for the given
// terms:
//
//	score = 0.5·termFrequency + 0.3·positionWeight + 0.2·sectionBonus
//
// Multi-term queries average the per-term scores. The optional section hint
// ("summary" or "requirements") biases the section bonus toward the hinted
// section. The result always lies in [0, 1].
func Score(p *DocProfile, line int, terms []string, hint string) float64 {
	if p == nil || len(terms) == 0 {
		return 0
	}
	var sum float64
	for _, term := range terms {
		tf := p.termFrequency(term)
		pos := p.positionWeight(line)
		sec := p.sectionBonus(line, hint)
		sum += weightTermFrequency*tf + weightPosition*pos + weightSection*sec
	}
	score := sum / float64(len(terms))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// termFrequency is document-wide matches over total words, capped at 1.0.
func (p *DocProfile) termFrequency(term string) float64 {
	if tf, ok := p.tf[term]; ok {
		return tf
	}
	if p.totalWords == 0 {
		p.tf[term] = 0
		return 0
	}
	matches := 0
	for _, line := range p.lines {
		for _, word := range strings.Fields(line) {
			if termMatchesWord(term, word) {
				matches++
			}
		}
	}
	tf := float64(matches) / float64(p.totalWords)
	if tf > 1 {
		tf = 1
	}
	p.tf[term] = tf
	return tf
}

func (p *DocProfile) positionWeight(line int) float64 {
	if p.Heading(line) {
		return headingPosition
	}
	if line <= earlyDocumentLines {
		return earlyPosition
	}
	return latePosition
}

func (p *DocProfile) sectionBonus(line int, hint string) float64 {
	section := p.SectionAt(line)
	if section == "" {
		return 0
	}
	// The hint swaps which section class earns the full bonus.
	favored := sectionSummary
	if hint == sectionRequirements {
		favored = sectionRequirements
	}
	if section == favored {
		return fullSectionBonus
	}
	return halfSectionBonus
}

// ─── Term matching ───────────────────────────────────────────────────────────

// termMatchesWord reports whether a single word matches a query term:
// either the folded word contains the term, or the two share a stem (so
// "authentication" matches "authenticate"). Punctuation around the word is
// ignored.
func termMatchesWord(term, word string) bool {
	w := strings.Trim(strings.ToLower(word), ".,;:!?\"'()[]{}#*`-")
	if w == "" {
		return false
	}
	t := strings.ToLower(term)
	if strings.Contains(w, t) {
		return true
	}
	return stem(w) == stem(t)
}

// stemSuffixes are stripped once, longest first, when at least four
// characters remain.
var stemSuffixes = []string{
	"ization", "isation", "ations", "ation", "ments", "ment",
	"ings", "ing", "ions", "ion", "ness", "ance", "ence",
	"ies", "ied", "ate", "ize", "ise", "ers", "ed", "es", "er", "ly", "s",
}

// stem reduces a word to a comparable root: lowercase, strip one known
// suffix, drop a trailing "e". It only has to make morphological variants
// of the same word coincide, not produce linguistic stems.
func stem(word string) string {
	w := strings.ToLower(word)
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(w, suffix) && len(w)-len(suffix) >= 4 {
			w = w[:len(w)-len(suffix)]
			break
		}
	}
	if len(w) >= 5 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}
