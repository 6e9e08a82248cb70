package contract

import (
	"fmt"
	"sync"
)

// Registry holds named schemas and string formats. It has an explicit
// build-then-publish lifecycle: everything is registered during a single
// initialization pass, Publish is called exactly once, and only then may
// lookups (and dispatch depending on them) occur. After Publish the
// registry is read-only and safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	published bool
	schemas   map[string]*Schema
	formats   map[string]Format
}

// NewRegistry creates an empty, unpublished registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
		formats: make(map[string]Format),
	}
}

// RegisterSchema adds a named schema. It fails after Publish or when the
// name is already taken.
func (r *Registry) RegisterSchema(name string, s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published {
		return fmt.Errorf("register schema %q: %w", name, ErrPublished)
	}
	if _, ok := r.schemas[name]; ok {
		return fmt.Errorf("schema %q already registered", name)
	}
	r.schemas[name] = s
	return nil
}

// RegisterFormat adds a named string format. It fails after Publish or when
// the name is already taken.
func (r *Registry) RegisterFormat(f Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published {
		return fmt.Errorf("register format %q: %w", f.Name, ErrPublished)
	}
	if _, ok := r.formats[f.Name]; ok {
		return fmt.Errorf("format %q already registered", f.Name)
	}
	r.formats[f.Name] = f
	return nil
}

// Publish freezes the registry. Lookups are only valid after Publish.
func (r *Registry) Publish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = true
}

// Schema looks up a named schema. It fails before Publish so that no read
// can race with registry population.
func (r *Registry) Schema(name string) (*Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.published {
		return nil, fmt.Errorf("lookup schema %q: %w", name, ErrNotPublished)
	}
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}

// LookupFormat looks up a named string format. It fails before Publish.
func (r *Registry) LookupFormat(name string) (Format, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.published {
		return Format{}, fmt.Errorf("lookup format %q: %w", name, ErrNotPublished)
	}
	f, ok := r.formats[name]
	if !ok {
		return Format{}, fmt.Errorf("unknown format %q", name)
	}
	return f, nil
}

// DefaultRegistry is the process-wide registry used when a MethodSpec or
// ParseSchema call does not name one.
var DefaultRegistry = NewRegistry()
