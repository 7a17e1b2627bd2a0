package postprocessors

import (
	"fmt"
	"slices"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// NameKey holds the operator name in a pipeline config entry.
const NameKey = "name"

// BuilderFunc creates an Operator from generic config.
// Config is a map of operator-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.Operator, error)

// Registry maps operator names to their builders.
// It allows dynamic construction of operators from configuration, and
// rebuilding an operator from the details stored in provenance.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new operator registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds an operator builder to the registry.
// Name should be unique and match the operator's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates an operator by name with the given config.
// Returns ErrUnsupportedType if the name is not registered.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Operator, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operator %q", domain.ErrUnsupportedType, name)
	}
	op, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", name, err)
	}
	return op, nil
}

// BuildPipeline builds a pipeline from config entries. Each entry holds
// the operator name under "name" and its parameters alongside.
func (r *Registry) BuildPipeline(entries []map[string]any) (*Pipeline, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no operators configured", domain.ErrInvalidInput)
	}

	p := NewPipeline()
	for i, entry := range entries {
		name, ok := entry[NameKey].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: operator %d has no name", domain.ErrInvalidInput, i+1)
		}
		cfg := make(map[string]any, len(entry))
		for k, v := range entry {
			if k != NameKey {
				cfg[k] = v
			}
		}
		op, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		p.Add(op)
	}
	return p, nil
}

// Has returns true if an operator with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered operator names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
