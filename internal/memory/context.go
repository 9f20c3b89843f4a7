package memory

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/specmem/internal/config"
)

// ContextOverrides adjusts one context request beyond its command override.
type ContextOverrides struct {
	// Branch names the feature branch; empty falls back to the engine's.
	Branch string
	// MaxTokens overrides the global token ceiling when positive.
	MaxTokens int
}

// LoadContext assembles ambient context for a named workflow command: merge
// the command's configuration override, load each enabled source kind in
// priority order under the per-source ceiling, then enforce the global
// ceiling by dropping lowest-priority sources. Missing sources are recorded
// as informational notes, never errors; a project with no memory files
// yields a valid empty context.
func (e *Engine) LoadContext(commandName string, over *ContextOverrides) (*LoadedContext, error) {
	command := strings.TrimSpace(commandName)
	if command == "" {
		return nil, invalidf("command", "name is required")
	}

	eff := e.cfg.EffectiveFor(command)
	if over != nil && over.MaxTokens > 0 {
		eff.Budget.GlobalTokens = over.MaxTokens
		if eff.Budget.PerSourceTokens > eff.Budget.GlobalTokens {
			eff.Budget.PerSourceTokens = eff.Budget.GlobalTokens
		}
	}

	lc := &LoadedContext{Command: command, Warning: e.warning, LoadedAt: timeNow().UTC()}
	if !eff.Enabled {
		lc.Notes = append(lc.Notes, "memory context is disabled by configuration")
		return lc, nil
	}

	branch := ""
	if over != nil && over.Branch != "" {
		branch = over.Branch
	} else if b, ok := e.Branch(); ok {
		branch = b
	}

	seen := map[string]bool{}
	for _, kind := range eff.EnabledKinds() {
		sources, note := e.sourcesForKind(kind, branch, eff)
		if note != "" {
			lc.Notes = append(lc.Notes, note)
		}
		for _, src := range sources {
			if seen[src.ID] {
				continue
			}
			seen[src.ID] = true
			lc.Sources = append(lc.Sources, *e.loader.Load(src, eff.Budget.PerSourceTokens))
		}
	}

	enforceGlobalCeiling(lc, eff.Budget.GlobalTokens)

	if len(lc.Sources) == 0 && len(lc.Dropped) == 0 {
		lc.Notes = append(lc.Notes, fmt.Sprintf("no memory sources found under %s", e.root))
	}
	return lc, nil
}

// sourcesForKind resolves the catalog sources for one enabled kind. The
// note, when non-empty, explains an absence.
func (e *Engine) sourcesForKind(kind config.SourceKind, branch string, eff *config.Config) ([]MemorySource, string) {
	switch kind {
	case config.KindCurrentSpec:
		if branch == "" {
			return nil, "current_spec: no feature branch detected"
		}
		src, ok := e.catalog.CurrentFeatureSource(branch)
		if !ok {
			return nil, fmt.Sprintf("current_spec: no specification for branch %s", branch)
		}
		return []MemorySource{*src}, ""

	case config.KindRelatedSpecs:
		// Related specs anchor on the current feature; without one there
		// is nothing to relate to.
		if branch == "" {
			return nil, ""
		}
		current, ok := e.catalog.CurrentFeatureSource(branch)
		if !ok {
			return nil, ""
		}
		return e.catalog.RelatedSpecs(*current, eff.RelatedMax()), ""

	default:
		src, ok := e.catalog.Governance(kind)
		if !ok {
			return nil, fmt.Sprintf("%s: not present", kind)
		}
		return []MemorySource{*src}, ""
	}
}

// enforceGlobalCeiling drops the lowest-priority loaded sources until the
// aggregate fits. Sources arrive in priority order, so dropping walks from
// the end; skipped entries carry no tokens and stay for their diagnostics.
func enforceGlobalCeiling(lc *LoadedContext, globalTokens int) {
	total := 0
	for _, cs := range lc.Sources {
		total += cs.Tokens
	}

	if globalTokens > 0 {
		for total > globalTokens {
			idx := -1
			for i := len(lc.Sources) - 1; i >= 0; i-- {
				if lc.Sources[i].Loaded() {
					idx = i
					break
				}
			}
			if idx < 0 {
				break
			}
			victim := lc.Sources[idx]
			total -= victim.Tokens
			lc.Dropped = append(lc.Dropped, DroppedSource{
				ID:     victim.ID,
				Reason: fmt.Sprintf("global token ceiling %d exceeded", globalTokens),
			})
			lc.Sources = append(lc.Sources[:idx], lc.Sources[idx+1:]...)
		}
	}

	lc.TotalTokens = total
	lc.AnyTruncated = false
	for _, cs := range lc.Sources {
		if cs.Truncated {
			lc.AnyTruncated = true
			break
		}
	}
}
