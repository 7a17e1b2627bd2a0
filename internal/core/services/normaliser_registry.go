package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure NormaliserRegistry implements the interface.
var _ driven.NormaliserRegistry = (*NormaliserRegistry)(nil)

// NormaliserRegistry selects a normaliser by scan file format.
type NormaliserRegistry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewNormaliserRegistry creates a registry holding the given normalisers.
func NewNormaliserRegistry(normalisers ...driven.Normaliser) *NormaliserRegistry {
	r := &NormaliserRegistry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *NormaliserRegistry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
}

// Lookup returns the highest-priority normaliser for the scan's format.
// The format falls back to the URI extension when unset. Ties go to the
// normaliser registered first.
func (r *NormaliserRegistry) Lookup(raw *domain.RawScan) (driven.Normaliser, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: scan is nil", domain.ErrInvalidInput)
	}
	format := raw.Format
	if format == "" {
		format = filepath.Ext(raw.URI)
	}
	format = strings.ToLower(format)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var best driven.Normaliser
	for _, n := range r.normalisers {
		if !supports(n, format) {
			continue
		}
		if best == nil || n.Priority() > best.Priority() {
			best = n
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, format, raw.URI)
	}
	return best, nil
}

// SupportedFormats returns all formats that can be normalised, sorted.
func (r *NormaliserRegistry) SupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, f := range n.SupportedFormats() {
			seen[strings.ToLower(f)] = struct{}{}
		}
	}
	formats := make([]string, 0, len(seen))
	for f := range seen {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func supports(n driven.Normaliser, format string) bool {
	for _, f := range n.SupportedFormats() {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
