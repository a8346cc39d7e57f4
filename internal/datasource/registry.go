// Package datasource adapts external modules into KPI readings. A KPI names
// its adapter through SourceModule and passes SourceQuery to it verbatim.
package datasource

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	ModuleSQL      = "sql"
	ModuleSnapshot = "snapshot"
)

// Query is one read request. The tenant is passed so adapters can scope
// the lookup.
type Query struct {
	OrganizationID string
	BranchID       string
	Text           string
}

// Reading is a single measured value. At is when it was measured, or zero
// when the source cannot tell and the caller's clock applies.
type Reading struct {
	Value float64
	At    time.Time
}

// Source reads the current value for a query. found is false when the
// source has no data for it, which is not an error.
type Source interface {
	Read(ctx context.Context, q Query) (reading Reading, found bool, err error)
}

// Registry maps module names to sources. Names are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

func (r *Registry) Register(module string, s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[normalize(module)] = s
}

func (r *Registry) Lookup(module string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[normalize(module)]
	return s, ok
}

func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}
