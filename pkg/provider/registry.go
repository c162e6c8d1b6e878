package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

// Registry routes chat requests to providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry holding the given providers. A later provider
// replaces an earlier one with the same name.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}

	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Dispatch normalizes req with the provider it names and sends it. Unknown providers
// fail with ErrUnsupportedProvider before anything is normalized or sent.
func (r *Registry) Dispatch(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p, ok := r.Get(req.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, req.Provider)
	}

	messages := p.Normalize(req)
	return p.Send(ctx, messages, req.Model, req.APIKey)
}
