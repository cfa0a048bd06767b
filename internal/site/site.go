package site

import (
	"fmt"
	"time"

	"newsherd/internal/domain"
)

// Adapter captures everything the orchestrator needs to know about one
// source site: how to address its listing pages and how to read them.
type Adapter interface {
	Name() string
	// BuildPageURL returns the URL of the 1-based listing page, computed
	// relative to now. An empty string means the site has no further pages.
	BuildPageURL(page int, now time.Time) string
	// Extract parses raw page markup into candidate records. Broken
	// entries are skipped; only a wholly unparsable document fails.
	Extract(html string) ([]domain.Candidate, error)
}

// Registry keeps a mapping from adapter names to their implementations.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces a site adapter.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	r.adapters[adapter.Name()] = adapter
}

// Resolve returns an adapter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("site adapter %s is not registered", name)
}
