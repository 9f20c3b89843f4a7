// Package config loads the optional project-level memory configuration.
//
// The document lives at memory/config.json under the project root. It is
// consumed, never produced: absence means built-in defaults, and an invalid
// document falls back to the defaults with a warning so the calling command
// can proceed.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	// MemoryDir holds governance documents and the configuration file.
	MemoryDir = "memory"
	// SpecsDir holds one directory per feature specification.
	SpecsDir = "specs"
	// ConfigFile is the optional configuration document inside MemoryDir.
	ConfigFile = "config.json"

	// SchemaVersion is the only accepted value of the "version" field.
	SchemaVersion = 1
)

// SourceKind names a catalog slot that context assembly can enable, order,
// and budget independently.
type SourceKind string

const (
	KindConstitution     SourceKind = "constitution"
	KindRoadmap          SourceKind = "roadmap"
	KindCompletedRoadmap SourceKind = "completed_roadmap"
	KindCurrentSpec      SourceKind = "current_spec"
	KindRelatedSpecs     SourceKind = "related_specs"
)

// KindOrder lists every source kind in default priority order.
var KindOrder = []SourceKind{
	KindConstitution,
	KindCurrentSpec,
	KindRoadmap,
	KindRelatedSpecs,
	KindCompletedRoadmap,
}

var validKinds = map[SourceKind]bool{
	KindConstitution:     true,
	KindRoadmap:          true,
	KindCompletedRoadmap: true,
	KindCurrentSpec:      true,
	KindRelatedSpecs:     true,
}

// ValidateKind reports whether k names a known source kind.
func ValidateKind(k SourceKind) error {
	if !validKinds[k] {
		return fmt.Errorf("unknown source kind: %s", k)
	}
	return nil
}

// ─── Path helpers ────────────────────────────────────────────────────────────

// MemoryPath returns the memory directory for a project root.
func MemoryPath(projectRoot string) string {
	return filepath.Join(projectRoot, MemoryDir)
}

// SpecsPath returns the specs directory for a project root.
func SpecsPath(projectRoot string) string {
	return filepath.Join(projectRoot, SpecsDir)
}

// ConfigPath returns the configuration document path for a project root.
func ConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, MemoryDir, ConfigFile)
}

// Exists reports whether the project has a configuration document.
func Exists(projectRoot string) bool {
	_, err := os.Stat(ConfigPath(projectRoot))
	return err == nil
}

// ─── Configuration model ─────────────────────────────────────────────────────

// SourceConfig controls one source kind: whether it participates in context
// assembly, how early it is admitted (lower priority wins), and, for
// related_specs, how many sources it may contribute.
type SourceConfig struct {
	Enabled  bool `json:"enabled"`
	Priority int  `json:"priority"`
	MaxCount int  `json:"max_count,omitempty"`
}

// Budget carries the token ceilings: PerSourceTokens bounds a single loaded
// source, GlobalTokens bounds the whole assembled context.
type Budget struct {
	GlobalTokens    int `json:"global_tokens"`
	PerSourceTokens int `json:"per_source_tokens"`
}

// CommandOverride adjusts sources and budget for one named command. A
// sources entry replaces the base entry for that kind wholesale; a present
// budget overrides only its positive fields.
type CommandOverride struct {
	Sources map[SourceKind]SourceConfig `json:"sources,omitempty"`
	Budget  *Budget                     `json:"budget,omitempty"`
}

// SearchConfig tunes query interpretation. A non-empty list or map replaces
// the built-in default wholesale.
type SearchConfig struct {
	StopWords    []string          `json:"stop_words,omitempty"`
	SectionHints map[string]string `json:"section_hints,omitempty"`
}

// Config is the effective memory configuration for one invocation.
type Config struct {
	Version  int                         `json:"version"`
	Enabled  bool                        `json:"enabled"`
	Sources  map[SourceKind]SourceConfig `json:"sources"`
	Budget   Budget                      `json:"budget"`
	Commands map[string]CommandOverride  `json:"commands,omitempty"`
	Search   SearchConfig                `json:"search"`
}

// Built-in budget defaults.
const (
	DefaultGlobalTokens    = 16000
	DefaultPerSourceTokens = 4000
	DefaultRelatedMax      = 3
)

// Default returns the built-in configuration, including the per-command
// overrides that ship with the engine.
func Default() *Config {
	return &Config{
		Version: SchemaVersion,
		Enabled: true,
		Sources: map[SourceKind]SourceConfig{
			KindConstitution:     {Enabled: true, Priority: 1},
			KindCurrentSpec:      {Enabled: true, Priority: 2},
			KindRoadmap:          {Enabled: true, Priority: 3},
			KindRelatedSpecs:     {Enabled: true, Priority: 4, MaxCount: DefaultRelatedMax},
			KindCompletedRoadmap: {Enabled: false, Priority: 5},
		},
		Budget: Budget{
			GlobalTokens:    DefaultGlobalTokens,
			PerSourceTokens: DefaultPerSourceTokens,
		},
		Commands: map[string]CommandOverride{
			// specify drafts a new feature: the spec being written does not
			// exist yet, but finished work is worth recalling.
			"specify": {
				Sources: map[SourceKind]SourceConfig{
					KindCurrentSpec:      {Enabled: false, Priority: 2},
					KindCompletedRoadmap: {Enabled: true, Priority: 5},
				},
			},
			// plan reads everything and tolerates a larger context.
			"plan": {
				Sources: map[SourceKind]SourceConfig{
					KindCompletedRoadmap: {Enabled: true, Priority: 5},
				},
				Budget: &Budget{GlobalTokens: 24000},
			},
			// tasks and implement work from the current spec alone.
			"tasks": {
				Sources: map[SourceKind]SourceConfig{
					KindRoadmap:      {Enabled: false, Priority: 3},
					KindRelatedSpecs: {Enabled: false, Priority: 4},
				},
				Budget: &Budget{GlobalTokens: 12000},
			},
			"implement": {
				Sources: map[SourceKind]SourceConfig{
					KindRoadmap:      {Enabled: false, Priority: 3},
					KindRelatedSpecs: {Enabled: false, Priority: 4},
				},
				Budget: &Budget{GlobalTokens: 12000},
			},
			"analyze": {
				Sources: map[SourceKind]SourceConfig{
					KindCompletedRoadmap: {Enabled: true, Priority: 5},
					KindRelatedSpecs:     {Enabled: true, Priority: 4, MaxCount: 5},
				},
			},
		},
		Search: SearchConfig{},
	}
}

// ─── Loading ─────────────────────────────────────────────────────────────────

// Store loads configuration for a project root. The returned warning is
// non-empty when the document was present but unusable and defaults were
// substituted.
type Store interface {
	Load(projectRoot string) (*Config, string)
}

// FileStore reads memory/config.json from disk.
type FileStore struct{}

// NewFileStore creates a file-backed configuration store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load returns the effective configuration for projectRoot. An absent
// document yields the defaults with no warning; a malformed or invalid one
// yields the defaults plus a warning describing the problem.
func (s *FileStore) Load(projectRoot string) (*Config, string) {
	data, err := os.ReadFile(ConfigPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), ""
		}
		return Default(), fmt.Sprintf("reading %s: %v; using defaults", ConfigFile, err)
	}

	// Decoding over the defaults keeps every field the document omits.
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Sprintf("parsing %s: %v; using defaults", ConfigFile, err)
	}
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Sprintf("invalid %s: %v; using defaults", ConfigFile, err)
	}
	return cfg, ""
}

// Load reads configuration for projectRoot with the default file store.
func Load(projectRoot string) (*Config, string) {
	return NewFileStore().Load(projectRoot)
}

func (c *Config) validate() error {
	if c.Version != SchemaVersion {
		return fmt.Errorf("unsupported version %d (want %d)", c.Version, SchemaVersion)
	}
	if c.Budget.GlobalTokens <= 0 || c.Budget.PerSourceTokens <= 0 {
		return fmt.Errorf("token ceilings must be positive")
	}
	if c.Budget.PerSourceTokens > c.Budget.GlobalTokens {
		return fmt.Errorf("per_source_tokens %d exceeds global_tokens %d",
			c.Budget.PerSourceTokens, c.Budget.GlobalTokens)
	}
	if err := validateSources(c.Sources); err != nil {
		return err
	}
	for name, over := range c.Commands {
		if err := validateSources(over.Sources); err != nil {
			return fmt.Errorf("command %q: %w", name, err)
		}
		if over.Budget != nil {
			if over.Budget.GlobalTokens < 0 || over.Budget.PerSourceTokens < 0 {
				return fmt.Errorf("command %q: negative token ceiling", name)
			}
		}
	}
	for word, section := range c.Search.SectionHints {
		if section != "summary" && section != "requirements" {
			return fmt.Errorf("section hint for %q: unknown section %q", word, section)
		}
	}
	return nil
}

func validateSources(sources map[SourceKind]SourceConfig) error {
	for kind, sc := range sources {
		if err := ValidateKind(kind); err != nil {
			return err
		}
		if sc.Priority < 0 {
			return fmt.Errorf("source %s: negative priority", kind)
		}
		if sc.MaxCount < 0 {
			return fmt.Errorf("source %s: negative max_count", kind)
		}
	}
	return nil
}

// ─── Typed accessors ─────────────────────────────────────────────────────────

// EffectiveFor returns a copy of the configuration with the override for
// commandName applied. Unknown commands get the base configuration.
func (c *Config) EffectiveFor(commandName string) *Config {
	eff := c.Clone()
	over, ok := c.Commands[commandName]
	if !ok {
		return eff
	}
	for kind, sc := range over.Sources {
		eff.Sources[kind] = sc
	}
	if over.Budget != nil {
		if over.Budget.GlobalTokens > 0 {
			eff.Budget.GlobalTokens = over.Budget.GlobalTokens
		}
		if over.Budget.PerSourceTokens > 0 {
			eff.Budget.PerSourceTokens = over.Budget.PerSourceTokens
		}
		if eff.Budget.PerSourceTokens > eff.Budget.GlobalTokens {
			eff.Budget.PerSourceTokens = eff.Budget.GlobalTokens
		}
	}
	return eff
}

// EnabledKinds returns the enabled source kinds sorted by priority, ties
// broken by kind name for determinism.
func (c *Config) EnabledKinds() []SourceKind {
	kinds := make([]SourceKind, 0, len(c.Sources))
	for kind, sc := range c.Sources {
		if sc.Enabled {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool {
		pi, pj := c.Sources[kinds[i]].Priority, c.Sources[kinds[j]].Priority
		if pi != pj {
			return pi < pj
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

// RelatedMax returns the related-spec cap, falling back to the default when
// the entry leaves it unset.
func (c *Config) RelatedMax() int {
	if sc, ok := c.Sources[KindRelatedSpecs]; ok && sc.MaxCount > 0 {
		return sc.MaxCount
	}
	return DefaultRelatedMax
}

// StopWordSet returns the effective stop-word set for query interpretation.
func (c *Config) StopWordSet() map[string]bool {
	if len(c.Search.StopWords) == 0 {
		return defaultStopWords
	}
	set := make(map[string]bool, len(c.Search.StopWords))
	for _, w := range c.Search.StopWords {
		set[w] = true
	}
	return set
}

// SectionHint maps an interrogative word to the section it should bias
// scoring toward. The second return is false when the word carries no hint.
func (c *Config) SectionHint(word string) (string, bool) {
	table := c.Search.SectionHints
	if len(table) == 0 {
		table = defaultSectionHints
	}
	section, ok := table[word]
	return section, ok
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Sources = make(map[SourceKind]SourceConfig, len(c.Sources))
	for k, v := range c.Sources {
		out.Sources[k] = v
	}
	out.Commands = make(map[string]CommandOverride, len(c.Commands))
	for name, over := range c.Commands {
		cp := CommandOverride{}
		if over.Sources != nil {
			cp.Sources = make(map[SourceKind]SourceConfig, len(over.Sources))
			for k, v := range over.Sources {
				cp.Sources[k] = v
			}
		}
		if over.Budget != nil {
			b := *over.Budget
			cp.Budget = &b
		}
		out.Commands[name] = cp
	}
	if c.Search.StopWords != nil {
		out.Search.StopWords = append([]string(nil), c.Search.StopWords...)
	}
	if c.Search.SectionHints != nil {
		out.Search.SectionHints = make(map[string]string, len(c.Search.SectionHints))
		for k, v := range c.Search.SectionHints {
			out.Search.SectionHints[k] = v
		}
	}
	return &out
}

// defaultStopWords is the built-in set of common words filtered from
// natural-language queries and keyword bags.
var defaultStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "its": true, "let": true, "may": true, "who": true,
	"did": true, "get": true, "him": true, "his": true, "how": true,
	"man": true, "new": true, "now": true, "old": true, "see": true,
	"way": true, "day": true, "too": true, "use": true, "she": true,
	"that": true, "with": true, "have": true, "this": true, "will": true,
	"your": true, "from": true, "they": true, "been": true, "said": true,
	"each": true, "which": true, "their": true, "there": true, "about": true,
	"would": true, "make": true, "like": true, "just": true, "over": true,
	"such": true, "take": true, "also": true, "into": true, "than": true,
	"them": true, "then": true, "some": true, "what": true, "when": true,
	"were": true, "other": true, "could": true, "after": true, "should": true,
}

// defaultSectionHints maps leading interrogatives to the document section
// most likely to answer them.
var defaultSectionHints = map[string]string{
	"what":  "summary",
	"why":   "summary",
	"who":   "summary",
	"how":   "requirements",
	"which": "requirements",
	"when":  "requirements",
	"where": "requirements",
}
