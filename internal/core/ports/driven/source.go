package driven

import (
	"context"
	"iter"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// ScanSource yields raw scan files, one at a time, in a stable order.
// Each source type (filesystem, in-memory, etc.) implements this interface.
type ScanSource interface {
	// Type returns the source type identifier.
	Type() string

	// Validate checks the source is readable before a run starts.
	// For filesystem, this checks the root exists and is a directory.
	Validate(ctx context.Context) error

	// Scans iterates over every raw scan. A non-nil error paired with a
	// non-nil scan is a per-file read failure and iteration continues; a
	// non-nil error with a nil scan is fatal and ends the iteration.
	Scans(ctx context.Context) iter.Seq2[*domain.RawScan, error]
}

// ScanFetcher retrieves a single raw scan by identifier.
// Used for ingesting from a live scan database instead of a directory.
type ScanFetcher interface {
	// Fetch returns the raw scan with the given identifier.
	// Returns ErrNotFound if no such scan exists.
	Fetch(ctx context.Context, id string) (*domain.RawScan, error)
}

// ScanSourceFactory creates scan sources from configuration.
type ScanSourceFactory interface {
	// Create returns a ScanSource for the given configuration.
	// Returns ErrUnsupportedType if the source type is unknown.
	Create(ctx context.Context, cfg domain.SourceConfig) (ScanSource, error)

	// SupportedTypes returns all registered source types.
	SupportedTypes() []string
}
