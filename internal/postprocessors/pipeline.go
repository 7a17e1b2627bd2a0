// Package postprocessors provides the operator framework: a pipeline that
// folds operators over stored records, the provenance each invocation
// leaves behind, and a registry that builds operators from configuration.
package postprocessors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.OperatorPipeline = (*Pipeline)(nil)

// LabelSeparator joins operator names in a pipeline label.
const LabelSeparator = "->"

// Pipeline chains operators and runs them in order.
// It implements the OperatorPipeline interface.
type Pipeline struct {
	operators []driven.Operator
	now       func() time.Time
}

// NewPipeline creates a new pipeline with the given operators.
// Operators are executed in the order provided.
func NewPipeline(operators ...driven.Operator) *Pipeline {
	return &Pipeline{
		operators: operators,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for provenance timestamps.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Add appends an operator to the pipeline.
func (p *Pipeline) Add(op driven.Operator) {
	p.operators = append(p.operators, op)
}

// Len returns the number of operators in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.operators)
}

// Label joins the operator names with "->".
func (p *Pipeline) Label() string {
	names := make([]string, len(p.operators))
	for i, op := range p.operators {
		names[i] = op.Name()
	}
	return strings.Join(names, LabelSeparator)
}

// Details returns the configuration of every operator, in order.
func (p *Pipeline) Details() []domain.OperatorDetails {
	details := make([]domain.OperatorDetails, len(p.operators))
	for i, op := range p.operators {
		details[i] = Details(op)
	}
	return details
}

// MetadataOnly reports whether no operator transforms data.
func (p *Pipeline) MetadataOnly() bool {
	for _, op := range p.operators {
		if _, ok := op.(driven.DataOperator); ok {
			return false
		}
	}
	return true
}

// Apply runs the record through every operator in order. The record
// itself is not modified.
func (p *Pipeline) Apply(ctx context.Context, rec *domain.Record) (*driven.PipelineResult, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: record is nil", domain.ErrInvalidInput)
	}
	if len(p.operators) == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", domain.ErrInvalidInput)
	}

	result := &driven.PipelineResult{
		Data:     rec.Data,
		Metadata: domain.CloneMetadata(rec.Metadata),
	}

	for _, op := range p.operators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, metadata, prov, err := Invoke(ctx, op, rec, result.Data, result.Metadata, p.now())
		if err != nil {
			return nil, err
		}
		result.Data = data
		result.Metadata = metadata
		result.Provenance = append(result.Provenance, prov)
	}

	return result, nil
}

// Invoke runs a single operator over (data, metadata) consumed from parent,
// which must not be nil.
// Node operators are first checked for compatibility with the parent's specs.
// The returned metadata carries the provenance under "operator_information";
// the parent reference is omitted when the operator leaves data untouched.
func Invoke(
	ctx context.Context,
	op driven.Operator,
	parent *domain.Record,
	data *domain.Table,
	metadata map[string]any,
	now time.Time,
) (*domain.Table, map[string]any, domain.Provenance, error) {
	var prov domain.Provenance

	if node, ok := op.(driven.NodeOperator); ok {
		if err := CheckCompatibility(node, parent.Specs); err != nil {
			return nil, nil, prov, err
		}
	}

	dataOp, transformsData := op.(driven.DataOperator)
	metaOp, transformsMetadata := op.(driven.MetadataOperator)
	if !transformsData && !transformsMetadata {
		return nil, nil, prov, fmt.Errorf("%w: operator %s transforms neither data nor metadata",
			domain.ErrInvalidInput, op.Name())
	}

	if transformsData {
		out, err := dataOp.ProcessData(ctx, data, metadata)
		if err != nil {
			return nil, nil, prov, fmt.Errorf("operator %s: %w", op.Name(), err)
		}
		data = out
	}

	if transformsMetadata {
		out, err := metaOp.ProcessMetadata(ctx, data, metadata)
		if err != nil {
			return nil, nil, prov, fmt.Errorf("operator %s: %w", op.Name(), err)
		}
		metadata = out
	} else {
		metadata = domain.CloneMetadata(metadata)
	}

	prov = domain.Provenance{
		Operator:  Details(op),
		Timestamp: now.UTC(),
	}
	if transformsData && parent.ID != "" {
		id := parent.ID
		prov.Parent = &id
	}
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[domain.OperatorInformationKey] = prov.Map()

	return data, metadata, prov, nil
}

// Details returns the serializable configuration of an operator.
func Details(op driven.Operator) domain.OperatorDetails {
	return domain.OperatorDetails{Name: op.Name(), Config: op.Config()}
}
