package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
	"github.com/lightway-xas/lightway/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// errFailFast is returned in fail-fast mode wrapping the first file failure.
var errFailFast = errors.New("ingest stopped at first failure")

// IngestService drives scans through normalise, validate, shape and write.
//
// A file that fails to read, parse or derive is recorded in the report and
// the run moves on; a channel that fails validation is skipped alone. Only
// source and store faults end the run early, unless FailFast is set.
type IngestService struct {
	factory   driven.ScanSourceFactory
	registry  driven.NormaliserRegistry
	validator driven.RecordValidator
	writer    driven.RecordWriter
	opts      driving.IngestOptions
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	factory driven.ScanSourceFactory,
	registry driven.NormaliserRegistry,
	validator driven.RecordValidator,
	writer driven.RecordWriter,
	opts driving.IngestOptions,
) *IngestService {
	return &IngestService{
		factory:   factory,
		registry:  registry,
		validator: validator,
		writer:    writer,
		opts:      opts,
	}
}

// IngestTree ingests every file under root whose name ends in extension.
func (s *IngestService) IngestTree(ctx context.Context, root, extension string) (*domain.IngestReport, error) {
	if s.factory == nil {
		return nil, errors.New("create source: source factory not configured")
	}
	format := s.opts.Format
	if format == "" {
		format = domain.DefaultScanFormat
	}
	source, err := s.factory.Create(ctx, domain.SourceConfig{
		Type:      domain.SourceTypeFilesystem,
		Root:      root,
		Extension: extension,
		Format:    format,
	})
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return s.Ingest(ctx, source)
}

// Ingest ingests every scan yielded by source.
func (s *IngestService) Ingest(ctx context.Context, source driven.ScanSource) (*domain.IngestReport, error) {
	if err := source.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate source: %w", err)
	}

	logger.Section("Ingesting from %s source", source.Type())
	report := &domain.IngestReport{}

	for raw, err := range source.Scans(ctx) {
		if err != nil && raw == nil {
			report.Sort()
			return report, fmt.Errorf("read scans: %w", err)
		}
		report.Scanned++

		if err != nil {
			if ferr := s.fail(report, domain.Failure{URI: raw.URI, Stage: domain.StageRead, Err: err}); ferr != nil {
				return report, ferr
			}
			continue
		}

		if err := s.ingestOne(ctx, raw, report); err != nil {
			report.Sort()
			return report, err
		}
	}

	return s.finish(report), nil
}

// IngestScans fetches each identifier from fetcher and ingests it.
// An identifier the fetcher cannot resolve is recorded as a read failure.
func (s *IngestService) IngestScans(ctx context.Context, fetcher driven.ScanFetcher, ids []string) (*domain.IngestReport, error) {
	logger.Section("Ingesting %d scans by identifier", len(ids))
	report := &domain.IngestReport{}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Sort()
			return report, err
		}
		report.Scanned++

		raw, err := fetcher.Fetch(ctx, id)
		if err != nil {
			if ferr := s.fail(report, domain.Failure{URI: id, Stage: domain.StageRead, Err: err}); ferr != nil {
				return report, ferr
			}
			continue
		}

		if err := s.ingestOne(ctx, raw, report); err != nil {
			report.Sort()
			return report, err
		}
	}

	return s.finish(report), nil
}

// ingestOne processes a single scan. Failures are added to the report;
// the returned error is non-nil only when the run must stop.
func (s *IngestService) ingestOne(ctx context.Context, raw *domain.RawScan, report *domain.IngestReport) error {
	logger.Debug("Processing: %s", raw.URI)

	normaliser, err := s.registry.Lookup(raw)
	if err != nil {
		return s.fail(report, domain.Failure{URI: raw.URI, Stage: domain.StageNormalise, Err: err})
	}

	records, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return s.fail(report, domain.Failure{URI: raw.URI, Stage: domain.StageNormalise, Err: err})
	}

	for i := range records {
		failure, err := s.writeChannel(ctx, normaliser, raw.URI, &records[i], report)
		if err != nil {
			return err
		}
		if failure != nil {
			if err := s.fail(report, *failure); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeChannel validates, shapes and writes one channel record. A channel
// failure is returned as a Failure; a store fault is returned as an error.
func (s *IngestService) writeChannel(
	ctx context.Context,
	normaliser driven.Normaliser,
	uri string,
	rec *domain.ChannelRecord,
	report *domain.IngestReport,
) (*domain.Failure, error) {
	failure := func(stage domain.Stage, err error) *domain.Failure {
		logger.Debug("Skipping %s channel of %s: %v", rec.Channel, uri, err)
		return &domain.Failure{URI: uri, Channel: rec.Channel, Stage: stage, Err: err}
	}

	if err := s.validator.ValidateChannel(rec); err != nil {
		return failure(domain.StageValidate, err), nil
	}

	doc, err := normaliser.Shape(rec)
	if err != nil {
		return failure(domain.StageShape, err), nil
	}

	if !s.opts.SkipSchema {
		if err := s.validator.ValidateDocument(domain.StructureFamilyDataframe, rec.Data, doc); err != nil {
			return failure(domain.StageValidate, err), nil
		}
	}

	id, err := s.writer.Write(ctx, rec.Data, doc, []domain.Spec{{Name: domain.SpecExperimentalXAS}})
	if err != nil {
		report.Failures = append(report.Failures, domain.Failure{
			URI: uri, Channel: rec.Channel, Stage: domain.StageWrite, Err: err,
		})
		return nil, fmt.Errorf("write %s channel of %s: %w", rec.Channel, uri, err)
	}

	report.Written = append(report.Written, domain.WrittenRecord{
		URI:        uri,
		Channel:    rec.Channel,
		Identifier: rec.Identifier,
		RecordID:   id,
	})
	return nil, nil
}

// fail records a failure and, in fail-fast mode, returns the error that
// stops the run.
func (s *IngestService) fail(report *domain.IngestReport, f domain.Failure) error {
	report.Failures = append(report.Failures, f)
	logger.Warn("%s failed at %s: %v", f.URI, f.Stage, f.Err)

	if !s.opts.FailFast {
		return nil
	}
	report.Sort()
	return fmt.Errorf("%w: %s: %w", errFailFast, f.URI, f.Err)
}

func (s *IngestService) finish(report *domain.IngestReport) *domain.IngestReport {
	report.Sort()
	logger.Info("Ingest complete: %d files, %d records written, %d files with failures",
		report.Scanned, len(report.Written), report.FailedFiles())
	return report
}
