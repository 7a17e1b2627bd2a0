package driven

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// Operator is a named, serializable transform configuration.
// Operators carry no mutable state between invocations.
//
// An operator gains behaviour by also implementing DataOperator,
// MetadataOperator, or both. Implementing NodeOperator additionally
// makes it consume stored records, guarded by spec compatibility.
type Operator interface {
	// Name returns the operator name used in pipeline labels and the registry.
	Name() string

	// Config returns the operator parameters. Building the operator by
	// Name with this config yields an equivalent operator.
	Config() map[string]any
}

// DataOperator transforms the table of a record.
type DataOperator interface {
	Operator

	// ProcessData returns a new table; the input must not be modified.
	ProcessData(ctx context.Context, data *domain.Table, metadata map[string]any) (*domain.Table, error)
}

// MetadataOperator transforms the metadata document of a record.
// It runs after any data transform of the same operator and sees its output.
type MetadataOperator interface {
	Operator

	// ProcessMetadata returns a new metadata document; the input must not be modified.
	ProcessMetadata(ctx context.Context, data *domain.Table, metadata map[string]any) (map[string]any, error)
}

// NodeOperator consumes stored records. Before it runs, the record's specs
// must cover every requirement, else a *domain.CompatibilityError is returned.
type NodeOperator interface {
	Operator

	// Requirements returns the specs a record must declare.
	Requirements() []domain.Spec
}

// PipelineResult is the output of running a record through a pipeline.
type PipelineResult struct {
	// Data is the transformed table.
	Data *domain.Table

	// Metadata is the transformed metadata document, including provenance.
	Metadata map[string]any

	// Provenance holds one entry per operator, in invocation order.
	Provenance []domain.Provenance
}

// OperatorPipeline folds an ordered chain of operators over a record.
type OperatorPipeline interface {
	// Label joins the operator names with "->".
	Label() string

	// Details returns the configuration of every operator, in order.
	Details() []domain.OperatorDetails

	// Len returns the number of operators.
	Len() int

	// MetadataOnly reports whether no operator transforms data.
	MetadataOnly() bool

	// Apply runs the record through every operator in order, each consuming
	// the previous operator's output.
	Apply(ctx context.Context, rec *domain.Record) (*PipelineResult, error)
}
