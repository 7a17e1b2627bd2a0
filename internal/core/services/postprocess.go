package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
	"github.com/lightway-xas/lightway/internal/logger"
)

// Ensure PostprocessService implements the interface.
var _ driving.PostprocessService = (*PostprocessService)(nil)

// PostprocessService folds operator pipelines over stored records and
// writes every result back as a new record.
type PostprocessService struct {
	reader driven.RecordReader
	writer driven.RecordWriter
	now    func() time.Time
}

// NewPostprocessService creates a post-processing service.
func NewPostprocessService(reader driven.RecordReader, writer driven.RecordWriter) *PostprocessService {
	return &PostprocessService{
		reader: reader,
		writer: writer,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for the "modified" timestamp.
func (s *PostprocessService) WithClock(now func() time.Time) *PostprocessService {
	s.now = now
	return s
}

// Postprocess applies pipeline to every record matching query. Each result
// is written with the parent's specs and metadata augmented with
// operator_details, modified and dataset (the pipeline label).
//
// A record the pipeline rejects is recorded in the report; reader and
// writer faults end the run.
func (s *PostprocessService) Postprocess(
	ctx context.Context,
	pipeline driven.OperatorPipeline,
	query domain.RecordQuery,
) (*domain.PostprocessReport, error) {
	if pipeline == nil || pipeline.Len() == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", domain.ErrInvalidInput)
	}

	label := pipeline.Label()
	report := &domain.PostprocessReport{
		Pipeline: label,
		Written:  make(map[string]string),
	}
	logger.Section("Post-processing with %s", label)

	for rec, err := range s.reader.Records(ctx) {
		if err != nil {
			report.Sort()
			return report, fmt.Errorf("read records: %w", err)
		}
		if !query.Matches(rec.Metadata) {
			continue
		}
		report.Processed++
		logger.Debug("Processing: %s", rec.Label())

		result, err := pipeline.Apply(ctx, rec)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.Sort()
				return report, ctxErr
			}
			stage := domain.StageOperator
			if errors.Is(err, domain.ErrCompatibility) {
				stage = domain.StageCompatible
			}
			logger.Warn("%s failed at %s: %v", rec.ID, stage, err)
			report.Failures = append(report.Failures, domain.Failure{URI: rec.ID, Stage: stage, Err: err})
			continue
		}

		metadata := result.Metadata
		if metadata == nil {
			metadata = make(map[string]any)
		}
		metadata[domain.OperatorDetailsKey] = detailsValue(pipeline.Details())
		metadata[domain.ModifiedKey] = s.now().UTC().Format(domain.ProvenanceTimeFormat)
		metadata[domain.DatasetKey] = label

		id, err := s.writer.Write(ctx, result.Data, metadata, rec.Specs)
		if err != nil {
			report.Failures = append(report.Failures, domain.Failure{URI: rec.ID, Stage: domain.StageWrite, Err: err})
			report.Sort()
			return report, fmt.Errorf("write result of %s: %w", rec.ID, err)
		}
		report.Written[rec.ID] = id
	}

	report.Sort()
	logger.Info("Post-processing complete: %d records, %d written, %d failed",
		report.Processed, len(report.Written), len(report.Failures))
	return report, nil
}

// detailsValue converts operator details to a metadata value.
func detailsValue(details []domain.OperatorDetails) []any {
	out := make([]any, len(details))
	for i, d := range details {
		out[i] = d.Map()
	}
	return out
}
