package driving

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// IngestService runs scan files through parse, derive, validate and write.
type IngestService interface {
	// IngestTree ingests every file under root whose name ends in extension.
	// An empty extension means domain.DefaultScanExtension.
	IngestTree(ctx context.Context, root, extension string) (*domain.IngestReport, error)

	// Ingest ingests every scan yielded by source.
	Ingest(ctx context.Context, source driven.ScanSource) (*domain.IngestReport, error)

	// IngestScans fetches each identifier from fetcher and ingests it.
	IngestScans(ctx context.Context, fetcher driven.ScanFetcher, ids []string) (*domain.IngestReport, error)
}

// IngestOptions tunes the failure policy of an ingest run.
type IngestOptions struct {
	// FailFast stops at the first failing file instead of recording it
	// in the report and moving on.
	FailFast bool

	// SkipSchema disables typed schema validation of shaped metadata.
	SkipSchema bool

	// Format is the normaliser format of files found by IngestTree; empty
	// means domain.DefaultScanFormat.
	Format string
}
