package driving

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// RecordService manages stored records.
type RecordService interface {
	// List returns records matching the query.
	List(ctx context.Context, query domain.RecordQuery) ([]domain.Record, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Annotate runs a pipeline of metadata-only operators on a record and
	// updates its metadata in place. Returns the new metadata.
	Annotate(ctx context.Context, id string, pipeline driven.OperatorPipeline) (map[string]any, error)

	// CheckQuality labels a stored spectrum with DataQualityLabel and
	// writes the label back in place. Returns the label.
	CheckQuality(ctx context.Context, id string, thresholds QualityThresholds) (string, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}

// QualityThresholds tunes CheckQuality. A nil field selects the default;
// zero is a valid threshold and tolerates nothing.
type QualityThresholds struct {
	// Negative is the tolerated fraction of negative mu values.
	Negative *float64

	// TailPositive is the tolerated fraction of tail points above 1.5.
	TailPositive *float64
}
