package emit

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownFormat is returned by Registry.Lookup for unregistered names.
var ErrUnknownFormat = errors.New("unknown format")

// Registry maps format names to builders. It is safe for concurrent use.
// Each caller owns its own registry; there is no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	types    map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		types:    make(map[string]string),
	}
}

// Register adds a builder under name with the given media type.
// It returns an error if the name is empty, b is nil, or the name is taken.
func (r *Registry) Register(name, contentType string, b Builder) error {
	if name == "" {
		return errors.New("register: empty format name")
	}
	if b == nil {
		return fmt.Errorf("register %q: nil builder", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.builders[name]; dup {
		return fmt.Errorf("register %q: already registered", name)
	}
	r.builders[name] = b
	r.types[name] = contentType
	return nil
}

// Lookup returns the builder registered under name.
func (r *Registry) Lookup(name string) (Builder, error) {
	r.mu.RLock()
	b, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return b, nil
}

// ContentType returns the media type registered with name, or
// "text/plain; charset=utf-8" when none was given.
func (r *Registry) ContentType(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ct := r.types[name]; ct != "" {
		return ct
	}
	return "text/plain; charset=utf-8"
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
