package memtools

import (
	"github.com/HendryAvila/specmem/internal/memory"
)

// Provider hands each tool call its engine: the server's base engine by
// default, or a per-call engine when the request names another project root.
// Per-call engines share the base engine's search history, so mem_history
// reflects the whole session wherever the searches ran.
type Provider struct {
	base *memory.Engine
}

// NewProvider creates a Provider around the server's base engine.
func NewProvider(base *memory.Engine) *Provider {
	return &Provider{base: base}
}

// Base returns the server's base engine.
func (p *Provider) Base() *memory.Engine {
	return p.base
}

// For resolves the engine serving one call. An empty root means the base
// engine; anything else constructs an engine over that root.
func (p *Provider) For(root string) (*memory.Engine, error) {
	if root == "" || root == p.base.Root() {
		return p.base, nil
	}
	return memory.New(root, memory.Options{History: p.base.History()})
}
