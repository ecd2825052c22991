package provider

import (
	"sync"

	ierr "github.com/renderbase/renderbase/internal/errors"
)

// Registry dispatches to providers by name
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider; a second registration under the same name wins
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, ierr.NewError("unknown render provider").
			WithHint("The requested render provider is not configured").
			WithReportableDetails(map[string]interface{}{
				"provider": name,
			}).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

// Names lists the registered provider names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
