package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
	"github.com/lightway-xas/lightway/internal/logger"
	"github.com/lightway-xas/lightway/internal/postprocessors"
	"github.com/lightway-xas/lightway/internal/postprocessors/quality"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService manages stored records.
type RecordService struct {
	store driven.RecordStore
	now   func() time.Time
}

// NewRecordService creates a new record service.
func NewRecordService(store driven.RecordStore) *RecordService {
	return &RecordService{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the clock used for provenance timestamps.
func (s *RecordService) WithClock(now func() time.Time) *RecordService {
	s.now = now
	return s
}

// List returns records matching the query, in write order.
func (s *RecordService) List(ctx context.Context, query domain.RecordQuery) ([]domain.Record, error) {
	records, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return records, nil
}

// Get retrieves a record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (*domain.Record, error) {
	return s.store.Get(ctx, id)
}

// Annotate runs a metadata-only pipeline on a record and updates its
// metadata in place.
func (s *RecordService) Annotate(ctx context.Context, id string, pipeline driven.OperatorPipeline) (map[string]any, error) {
	if pipeline == nil || pipeline.Len() == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", domain.ErrInvalidInput)
	}
	if !pipeline.MetadataOnly() {
		return nil, fmt.Errorf("%w: pipeline %s transforms data, post-process it instead",
			domain.ErrInvalidInput, pipeline.Label())
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Apply(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateMetadata(ctx, id, result.Metadata); err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}

	logger.Debug("Annotated %s with %s", rec.Label(), pipeline.Label())
	return result.Metadata, nil
}

// CheckQuality labels a stored spectrum and writes the label back in place.
func (s *RecordService) CheckQuality(ctx context.Context, id string, thresholds driving.QualityThresholds) (string, error) {
	var opts []quality.Option
	if thresholds.Negative != nil {
		opts = append(opts, quality.WithNegativeThreshold(*thresholds.Negative))
	}
	if thresholds.TailPositive != nil {
		opts = append(opts, quality.WithTailPositiveThreshold(*thresholds.TailPositive))
	}

	pipeline := postprocessors.NewPipeline(quality.New(opts...)).WithClock(s.now)
	metadata, err := s.Annotate(ctx, id, pipeline)
	if err != nil {
		return "", err
	}

	label, _ := metadata[domain.QualityKey].(string)
	return label, nil
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Count returns the number of stored records.
func (s *RecordService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
