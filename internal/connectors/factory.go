package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lightway-xas/lightway/internal/connectors/filesystem"
	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ScanSourceFactory = (*Factory)(nil)

// BuilderFunc creates a scan source from configuration.
type BuilderFunc func(ctx context.Context, cfg domain.SourceConfig) (driven.ScanSource, error)

// Factory creates scan sources by type.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewFactory creates a factory with the filesystem source registered.
func NewFactory() *Factory {
	f := &Factory{builders: make(map[string]BuilderFunc)}
	f.Register(domain.SourceTypeFilesystem, buildFilesystem)
	return f
}

// Register adds or replaces the builder for a source type.
func (f *Factory) Register(sourceType string, builder BuilderFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[sourceType] = builder
}

// Create returns a ScanSource for the given configuration.
func (f *Factory) Create(ctx context.Context, cfg domain.SourceConfig) (driven.ScanSource, error) {
	f.mu.RLock()
	builder, ok := f.builders[cfg.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: source %q", domain.ErrUnsupportedType, cfg.Type)
	}
	return builder(ctx, cfg)
}

// SupportedTypes returns all registered source types, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func buildFilesystem(_ context.Context, cfg domain.SourceConfig) (driven.ScanSource, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: filesystem source requires a root directory", domain.ErrInvalidInput)
	}
	return filesystem.New(cfg.Root, cfg.Extension).WithFormat(cfg.Format), nil
}
