package driving

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// PostprocessService folds operator pipelines over stored records.
type PostprocessService interface {
	// Postprocess applies pipeline to every record matching query and
	// writes each result back as a new record.
	Postprocess(ctx context.Context, pipeline driven.OperatorPipeline, query domain.RecordQuery) (*domain.PostprocessReport, error)
}
