package memory

import (
	"github.com/HendryAvila/specmem/internal/config"
)

// Options configures an Engine beyond its project root.
type Options struct {
	// Config supplies an explicit configuration; nil loads the project's
	// memory/config.json (or the defaults when absent).
	Config *config.Config
	// Branch pins the feature branch; empty detects it from .git/HEAD.
	Branch string
	// HistoryLimit caps the search history; 0 uses the default.
	HistoryLimit int
	// History shares an existing search history with this engine, so a
	// server serving several roots keeps one session record. Overrides
	// HistoryLimit when set.
	History *SearchHistory
}

// Engine is the project memory engine for one explicit project root. It is
// cheap to construct, holds no file handles, and keeps no state between
// requests except the bounded search history.
type Engine struct {
	root    string
	cfg     *config.Config
	warning string
	branch  string
	catalog *Catalog
	loader  *Loader
	history *SearchHistory
}

// New creates an engine rooted at projectRoot. The root must exist; the
// engine never consults ambient process state to find a project.
func New(projectRoot string, opts Options) (*Engine, error) {
	cfg := opts.Config
	warning := ""
	if cfg == nil {
		cfg, warning = config.Load(projectRoot)
	}
	catalog, err := NewCatalog(projectRoot, cfg)
	if err != nil {
		return nil, err
	}
	history := opts.History
	if history == nil {
		history = NewHistory(opts.HistoryLimit)
	}
	return &Engine{
		root:    catalog.Root(),
		cfg:     cfg,
		warning: warning,
		branch:  opts.Branch,
		catalog: catalog,
		loader:  NewLoader(catalog.Root()),
		history: history,
	}, nil
}

// Root returns the absolute project root.
func (e *Engine) Root() string {
	return e.root
}

// Config returns the effective configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Warning returns the configuration fallback warning, if any.
func (e *Engine) Warning() string {
	return e.warning
}

// Branch returns the effective feature branch: the pinned one when set,
// otherwise whatever .git/HEAD points at.
func (e *Engine) Branch() (string, bool) {
	if e.branch != "" {
		return e.branch, true
	}
	return e.catalog.DetectBranch()
}

// Sources enumerates the discoverable memory sources admitted by filter.
func (e *Engine) Sources(filter SourceFilter) []MemorySource {
	return e.catalog.Sources(filter)
}

// Related resolves the current feature spec for branch (or the engine's
// branch when empty) and returns it with its related specifications. A
// branch without a specification yields (nil, nil, nil) — not found is a
// normal outcome.
func (e *Engine) Related(branch string, maxCount int) (*MemorySource, []MemorySource, error) {
	name := branch
	if name == "" {
		name, _ = e.Branch()
	}
	if name == "" {
		return nil, nil, invalidf("branch", "no feature branch given and none detected")
	}
	if maxCount <= 0 {
		maxCount = e.cfg.RelatedMax()
	}
	current, ok := e.catalog.CurrentFeatureSource(name)
	if !ok {
		return nil, nil, nil
	}
	return current, e.catalog.RelatedSpecs(*current, maxCount), nil
}

// History returns the engine's search history.
func (e *Engine) History() *SearchHistory {
	return e.history
}
