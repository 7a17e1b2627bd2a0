package driven

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// Normaliser turns a raw scan into derived channel records and shapes
// their metadata for the record store. Each normaliser handles one
// beamline file format.
type Normaliser interface {
	// Name identifies the normaliser in logs.
	Name() string

	// SupportedFormats returns the file extensions this normaliser handles.
	SupportedFormats() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise parses a raw scan and derives its channel records.
	Normalise(ctx context.Context, raw *domain.RawScan) ([]domain.ChannelRecord, error)

	// Shape converts a validated channel record's flat metadata into the
	// nested document the record store expects.
	Shape(rec *domain.ChannelRecord) (map[string]any, error)
}

// NormaliserRegistry selects the appropriate normaliser for a scan.
type NormaliserRegistry interface {
	// Lookup returns the highest-priority normaliser for the scan's format.
	// Returns ErrUnsupportedFormat if none matches.
	Lookup(raw *domain.RawScan) (Normaliser, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedFormats returns all formats that can be normalised.
	SupportedFormats() []string
}
