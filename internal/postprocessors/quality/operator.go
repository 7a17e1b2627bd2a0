// Package quality labels stored spectra by a simple data quality heuristic.
package quality

import (
	"context"
	"fmt"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Operator implements the interfaces.
var (
	_ driven.MetadataOperator = (*Operator)(nil)
	_ driven.NodeOperator     = (*Operator)(nil)
)

// Name is the registry name of the operator.
const Name = "DataQualityLabel"

// Quality labels.
const (
	Good = "good"
	Ugly = "ugly"
)

// Default thresholds.
const (
	DefaultNegativeThreshold     = 0.2
	DefaultTailPositiveThreshold = 0.02

	// TailLimit is the mu value above which a tail point counts as overshoot.
	TailLimit = 1.5
)

// Operator sets "quality" to "ugly" when too many mu values are negative or
// too many points in the last quarter exceed 1.5, and to "good" otherwise.
// It only reads data and never changes it.
type Operator struct {
	negativeThreshold     float64
	tailPositiveThreshold float64
}

// Option configures an Operator.
type Option func(*Operator)

// WithNegativeThreshold sets the tolerated fraction of negative mu values.
func WithNegativeThreshold(f float64) Option {
	return func(o *Operator) {
		o.negativeThreshold = f
	}
}

// WithTailPositiveThreshold sets the tolerated fraction of tail overshoot.
func WithTailPositiveThreshold(f float64) Option {
	return func(o *Operator) {
		o.tailPositiveThreshold = f
	}
}

// New creates a quality labelling operator.
func New(opts ...Option) *Operator {
	o := &Operator{
		negativeThreshold:     DefaultNegativeThreshold,
		tailPositiveThreshold: DefaultTailPositiveThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the operator name.
func (o *Operator) Name() string {
	return Name
}

// Config returns the operator parameters.
func (o *Operator) Config() map[string]any {
	return map[string]any{
		"negative_threshold":      o.negativeThreshold,
		"tail_positive_threshold": o.tailPositiveThreshold,
	}
}

// Requirements returns the specs a record must declare.
func (o *Operator) Requirements() []domain.Spec {
	return []domain.Spec{{Name: domain.SpecExperimentalXAS}}
}

// ProcessMetadata returns a copy of metadata with the quality label set.
func (o *Operator) ProcessMetadata(_ context.Context, data *domain.Table, metadata map[string]any) (map[string]any, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no data", domain.ErrInvalidInput)
	}
	mu, ok := data.Column(domain.ColumnMu)
	if !ok {
		return nil, fmt.Errorf("%w: column %s not found", domain.ErrInvalidInput, domain.ColumnMu)
	}

	out := domain.CloneMetadata(metadata)
	if out == nil {
		out = make(map[string]any)
	}
	out[domain.QualityKey] = o.Label(mu)
	return out, nil
}

// Label classifies a spectrum.
func (o *Operator) Label(mu []float64) string {
	if NegativeFraction(mu) > o.negativeThreshold {
		return Ugly
	}
	if TailOvershootFraction(mu) > o.tailPositiveThreshold {
		return Ugly
	}
	return Good
}

// NegativeFraction returns the fraction of values below zero.
// NaN counts as not negative. An empty spectrum yields 0.
func NegativeFraction(mu []float64) float64 {
	return fraction(mu, func(v float64) bool { return v < 0 })
}

// TailOvershootFraction returns the fraction of the last quarter of the
// spectrum (rounded up) above TailLimit.
func TailOvershootFraction(mu []float64) float64 {
	tail := (len(mu) + 3) / 4
	return fraction(mu[len(mu)-tail:], func(v float64) bool { return v > TailLimit })
}

func fraction(values []float64, match func(float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if match(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}
