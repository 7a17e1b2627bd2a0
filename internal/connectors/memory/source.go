// Package memory provides an in-process scan source. It stands in for a
// live scan database: scans are registered by identifier and can be
// enumerated or fetched one at a time.
package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.ScanSource  = (*Source)(nil)
	_ driven.ScanFetcher = (*Source)(nil)
)

// Source holds raw scans keyed by identifier.
type Source struct {
	mu    sync.RWMutex
	scans map[string]domain.RawScan
}

// New creates a source holding the given scans, keyed by URI.
func New(scans ...domain.RawScan) *Source {
	s := &Source{scans: make(map[string]domain.RawScan, len(scans))}
	for _, scan := range scans {
		s.Put(scan.URI, scan)
	}
	return s
}

// Put registers a scan under id, replacing any previous scan.
func (s *Source) Put(id string, scan domain.RawScan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan.Content = append([]byte(nil), scan.Content...)
	s.scans[id] = scan
}

// Len returns the number of registered scans.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scans)
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return domain.SourceTypeMemory
}

// Validate always succeeds unless the context is done.
func (s *Source) Validate(ctx context.Context) error {
	return ctx.Err()
}

// Scans yields every scan ordered by identifier.
func (s *Source) Scans(ctx context.Context) iter.Seq2[*domain.RawScan, error] {
	return func(yield func(*domain.RawScan, error) bool) {
		for _, id := range s.ids() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			scan, err := s.Fetch(ctx, id)
			if !yield(scan, err) {
				return
			}
		}
	}
}

// Fetch returns a copy of the scan registered under id.
func (s *Source) Fetch(ctx context.Context, id string) (*domain.RawScan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scan, ok := s.scans[id]
	if !ok {
		return nil, fmt.Errorf("scan %s: %w", id, domain.ErrNotFound)
	}
	scan.Content = append([]byte(nil), scan.Content...)
	return &scan, nil
}

func (s *Source) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.scans))
	for id := range s.scans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
