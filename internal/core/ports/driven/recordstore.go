package driven

import (
	"context"
	"iter"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// RecordWriter persists dataframes with their metadata documents.
type RecordWriter interface {
	// Write stores a new record and returns its identifier.
	// Writes are not idempotent: writing the same data twice creates two records.
	Write(ctx context.Context, data *domain.Table, metadata map[string]any, specs []domain.Spec) (string, error)
}

// RecordReader iterates over stored records.
type RecordReader interface {
	// Records yields every record in write order. Records written while
	// iterating are not yielded. A non-nil error ends the iteration.
	Records(ctx context.Context) iter.Seq2[*domain.Record, error]
}

// RecordStore is the metadata-indexed dataframe store.
type RecordStore interface {
	RecordWriter
	RecordReader

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record does not exist.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Search returns records whose metadata matches the query.
	Search(ctx context.Context, query domain.RecordQuery) ([]domain.Record, error)

	// UpdateMetadata replaces the metadata document of a record.
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
