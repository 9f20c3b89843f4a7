package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/HendryAvila/specmem/internal/config"
)

// Catalog enumerates memory sources from a project's on-disk layout. It is
// cheap to construct and request-scoped; every listing is a fresh scan.
type Catalog struct {
	root string
	cfg  *config.Config
}

// NewCatalog creates a catalog rooted at projectRoot. The root must name an
// existing directory; the engine never falls back to ambient process state.
func NewCatalog(projectRoot string, cfg *config.Config) (*Catalog, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, fmt.Errorf("project root is required")
	}
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Catalog{root: abs, cfg: cfg}, nil
}

// Root returns the absolute project root.
func (c *Catalog) Root() string {
	return c.root
}

// governanceFiles maps governance kinds to their files under memory/, in
// listing order.
var governanceFiles = []struct {
	Kind config.SourceKind
	File string
}{
	{config.KindConstitution, "constitution.md"},
	{config.KindRoadmap, "roadmap.md"},
	{config.KindCompletedRoadmap, "completed-roadmap.md"},
}

// ListGovernance returns sources for the constitution, roadmap, and
// completed-roadmap documents, silently omitting any that do not exist.
func (c *Catalog) ListGovernance() []MemorySource {
	var sources []MemorySource
	for _, gf := range governanceFiles {
		path := filepath.Join(config.MemoryPath(c.root), gf.File)
		if src, ok := c.newSource(path, gf.Kind); ok {
			sources = append(sources, *src)
		}
	}
	return sources
}

// Governance returns the source for a single governance kind, if present.
func (c *Catalog) Governance(kind config.SourceKind) (*MemorySource, bool) {
	for _, gf := range governanceFiles {
		if gf.Kind == kind {
			path := filepath.Join(config.MemoryPath(c.root), gf.File)
			return c.newSource(path, kind)
		}
	}
	return nil, false
}

// branchPattern matches feature branches of the form <number>-<slug>.
var branchPattern = regexp.MustCompile(`^\d+[-_][A-Za-z0-9._-]+$`)

// featureDirPattern matches feature directories under specs/.
var featureDirPattern = regexp.MustCompile(`^\d+[-_].+$`)

// CurrentFeatureSource maps a branch name like "003-user-auth" to its
// specification file. A branch that does not match the pattern, or whose
// spec file is absent, yields (nil, false) — not an error.
func (c *Catalog) CurrentFeatureSource(branchName string) (*MemorySource, bool) {
	if !branchPattern.MatchString(branchName) {
		return nil, false
	}
	path := filepath.Join(config.SpecsPath(c.root), branchName, "spec.md")
	return c.newSource(path, config.KindCurrentSpec)
}

// ListSpecs returns every feature specification under specs/, ordered by
// path for determinism.
func (c *Catalog) ListSpecs() []MemorySource {
	entries, err := os.ReadDir(config.SpecsPath(c.root))
	if err != nil {
		return nil
	}
	var sources []MemorySource
	for _, entry := range entries {
		if !entry.IsDir() || !featureDirPattern.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(config.SpecsPath(c.root), entry.Name(), "spec.md")
		if src, ok := c.newSource(path, config.KindRelatedSpecs); ok {
			sources = append(sources, *src)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources
}

// Sources returns every discoverable source admitted by the filter:
// governance documents first, then specifications.
func (c *Catalog) Sources(filter SourceFilter) []MemorySource {
	var sources []MemorySource
	if filter.Includes(ClassGovernance) {
		sources = append(sources, c.ListGovernance()...)
	}
	if filter.Includes(ClassSpec) {
		sources = append(sources, c.ListSpecs()...)
	}
	return sources
}

// ─── Related-spec discovery ──────────────────────────────────────────────────

const (
	// relatedScanLines bounds the title/summary region used for keyword
	// bags and reference extraction.
	relatedScanLines = 40
	// maxRelatedDepth bounds how far reference chains are followed.
	maxRelatedDepth = 2
)

// refPattern finds tokens that look like feature directory names inside a
// spec's title/summary region.
var refPattern = regexp.MustCompile(`\d+[-_][A-Za-z0-9._-]+`)

// RelatedSpecs finds specifications related to current: every other spec is
// ranked by keyword-overlap similarity of its title/summary region, and
// explicit references between specs extend discovery up to maxRelatedDepth
// hops, never revisiting a source. Results are ordered by similarity
// descending, ties broken by path, and capped at maxCount.
func (c *Catalog) RelatedSpecs(current MemorySource, maxCount int) []MemorySource {
	if maxCount <= 0 {
		maxCount = config.DefaultRelatedMax
	}

	specs := c.ListSpecs()
	byDir := make(map[string]MemorySource, len(specs))
	for _, s := range specs {
		byDir[filepath.Base(filepath.Dir(s.Path))] = s
	}

	bags := map[string][]string{}
	bagFor := func(src MemorySource) []string {
		if bag, ok := bags[src.ID]; ok {
			return bag
		}
		bag := c.keywordBag(src.Path)
		bags[src.ID] = bag
		return bag
	}

	currentBag := bagFor(current)

	type candidate struct {
		src MemorySource
		sim float64
	}
	candidates := map[string]candidate{}

	// Flat similarity pass over every other spec.
	for _, s := range specs {
		if s.ID == current.ID {
			continue
		}
		if sim := jaccard(currentBag, bagFor(s)); sim > 0 {
			candidates[s.ID] = candidate{src: s, sim: sim}
		}
	}

	// Reference expansion, bounded by depth and a visited set so that a
	// cycle (A→B→A) terminates instead of looping.
	type node struct {
		src   MemorySource
		depth int
	}
	visited := map[string]bool{current.ID: true}
	queue := []node{{src: current, depth: 0}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.depth >= maxRelatedDepth {
			continue
		}
		for _, ref := range c.referencedSpecs(n.src, byDir) {
			if visited[ref.ID] {
				continue
			}
			visited[ref.ID] = true
			if _, ok := candidates[ref.ID]; !ok {
				candidates[ref.ID] = candidate{src: ref, sim: jaccard(currentBag, bagFor(ref))}
			}
			queue = append(queue, node{src: ref, depth: n.depth + 1})
		}
	}

	ranked := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		ranked = append(ranked, cand)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].sim != ranked[j].sim {
			return ranked[i].sim > ranked[j].sim
		}
		return ranked[i].src.Path < ranked[j].src.Path
	})

	if len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}
	out := make([]MemorySource, len(ranked))
	for i, cand := range ranked {
		out[i] = cand.src
	}
	return out
}

// keywordBag extracts the stemmed keyword set from a spec's title/summary
// region. Unreadable files yield an empty bag.
func (c *Catalog) keywordBag(path string) []string {
	region, ok := c.scanRegion(path)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var bag []string
	stop := c.cfg.StopWordSet()
	for _, word := range strings.Fields(strings.ToLower(region)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}#*`-")
		if word == "" || len(word) < 3 || stop[word] {
			continue
		}
		s := stem(word)
		if !seen[s] {
			seen[s] = true
			bag = append(bag, s)
		}
	}
	return bag
}

// referencedSpecs returns the specs whose directory name appears in the
// title/summary region of src.
func (c *Catalog) referencedSpecs(src MemorySource, byDir map[string]MemorySource) []MemorySource {
	region, ok := c.scanRegion(src.Path)
	if !ok {
		return nil
	}
	var refs []MemorySource
	seen := map[string]bool{}
	for _, token := range refPattern.FindAllString(region, -1) {
		ref, ok := byDir[token]
		if !ok {
			// The pattern admits dots, so a reference ending a sentence
			// drags its period along; retry without it.
			ref, ok = byDir[strings.TrimRight(token, ".,;:!?")]
		}
		if !ok || ref.ID == src.ID || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}

// scanRegion reads the first relatedScanLines lines of a file.
func (c *Catalog) scanRegion(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > relatedScanLines {
		lines = lines[:relatedScanLines]
	}
	return strings.Join(lines, "\n"), true
}

// jaccard computes |A∩B| / |A∪B| over two keyword bags.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inA := make(map[string]bool, len(a))
	for _, w := range a {
		inA[w] = true
	}
	union := len(inA)
	shared := 0
	seen := map[string]bool{}
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if inA[w] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// ─── Branch detection ────────────────────────────────────────────────────────

// DetectBranch reads the checked-out branch from .git/HEAD under the project
// root. Detached HEADs and non-git roots yield ("", false).
func (c *Catalog) DetectBranch() (string, bool) {
	data, err := os.ReadFile(filepath.Join(c.root, ".git", "HEAD"))
	if err != nil {
		return "", false
	}
	head := strings.TrimSpace(string(data))
	const refPrefix = "ref: refs/heads/"
	if !strings.HasPrefix(head, refPrefix) {
		return "", false
	}
	branch := strings.TrimPrefix(head, refPrefix)
	if branch == "" {
		return "", false
	}
	return branch, true
}

// ─── Source construction ─────────────────────────────────────────────────────

// newSource builds a MemorySource for an existing regular file. The ID is a
// pure function of the path; line and token counts are best-effort so that
// an unreadable file still appears in the catalog (the loader records the
// skip diagnostic).
func (c *Catalog) newSource(path string, kind config.SourceKind) (*MemorySource, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	src := &MemorySource{
		ID:              sourceID(c.root, path),
		Path:            path,
		Class:           ClassForKind(kind),
		Kind:            kind,
		ModTime:         info.ModTime(),
		EstimatedTokens: int(info.Size() / tokenDivisor),
	}
	if data, err := os.ReadFile(path); err == nil {
		text := string(data)
		src.Lines = countLines(text)
		src.EstimatedTokens = EstimateTokens(text)
	}
	return src, true
}

// sourceID derives the stable identifier: the slash-normalized root-relative
// path with the .md suffix removed.
func sourceID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".md")
}

// countLines counts newline-terminated and trailing partial lines.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
