// Package generators provides the match generators and word classifier used
// by the shell host, and a registry that chains generators by priority.
package generators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrDuplicate is returned when registering a name twice.
var ErrDuplicate = errors.New("generator already registered")

// ErrNotRegistered is returned for an unknown generator name.
var ErrNotRegistered = errors.New("generator not registered")

type entry struct {
	name     string
	priority int
	gen      clinktypes.MatchGenerator
}

// Registry runs registered generators in ascending priority order until one
// claims the request. It is itself a MatchGenerator.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	logger  *log.Logger
}

var _ clinktypes.CooperativeGenerator = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: logger.NewStyledLogger("Generators")}
}

// Register adds a generator. Generators with equal priority run in
// registration order.
func (r *Registry) Register(name string, priority int, gen clinktypes.MatchGenerator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
	}
	r.entries = append(r.entries, entry{name: name, priority: priority, gen: gen})
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].priority < r.entries[j].priority
	})
	return nil
}

// Unregister removes a generator.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotRegistered, name)
}

// Get returns a generator by name.
func (r *Registry) Get(name string) (clinktypes.MatchGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.name == name {
			return e.gen, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
}

// Names returns the generator names in run order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Cooperative reports whether any registered generator is cooperative, in
// which case the whole chain runs as an editor task.
func (r *Registry) Cooperative() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if c, ok := e.gen.(clinktypes.CooperativeGenerator); ok && c.Cooperative() {
			return true
		}
	}
	return false
}

// Generate implements clinktypes.MatchGenerator. A failing generator stops
// the chain.
func (r *Registry) Generate(ctx context.Context, lines clinktypes.CommandLineStates, b clinktypes.MatchBuilder) (bool, error) {
	r.mu.RLock()
	entries := append([]entry(nil), r.entries...)
	r.mu.RUnlock()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		claimed, err := e.gen.Generate(ctx, lines, b)
		if err != nil {
			return false, fmt.Errorf("generator %s: %w", e.name, err)
		}
		if claimed {
			r.logger.Debug("Generator claimed request", "component", e.name)
			return true, nil
		}
	}
	return false, nil
}
