// Package normalize performs pre-edge subtraction and edge-step
// normalisation of XAS spectra.
//
// The edge energy e0 is the point of steepest rise unless given. A line is
// fitted to the pre-edge region and a polynomial of degree nnorm to the
// post-edge region; both are extrapolated to e0 and their difference is the
// edge step. The output is the flattened normalised spectrum: post-edge
// oscillations sit around 1 and the pre-edge around 0.
package normalize

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Operator implements the interface.
var _ driven.DataOperator = (*Operator)(nil)

// Name is the registry name of the operator.
const Name = "NormalizeEdge"

// Default fit regions, in eV relative to e0.
const (
	DefaultPre1  = -200.0
	DefaultPre2  = -30.0
	DefaultNorm1 = 100.0
	DefaultNNorm = 2
)

// stepTolerance is the smallest edge step, relative to the fitted
// absorption at e0, that is not treated as zero.
const stepTolerance = 1e-9

// Operator normalises spectra to unit edge step.
type Operator struct {
	xColumn  string
	yColumns []string

	e0    *float64
	pre1  float64
	pre2  float64
	norm1 float64
	norm2 *float64
	nnorm int
}

// Option configures an Operator.
type Option func(*Operator)

// WithXColumn sets the energy column (default "energy").
func WithXColumn(name string) Option {
	return func(o *Operator) {
		o.xColumn = name
	}
}

// WithYColumns sets the normalised columns (default ["mu"]).
func WithYColumns(names ...string) Option {
	return func(o *Operator) {
		o.yColumns = names
	}
}

// WithE0 fixes the edge energy instead of detecting it.
func WithE0(e0 float64) Option {
	return func(o *Operator) {
		o.e0 = &e0
	}
}

// WithPreEdge sets the pre-edge fit region relative to e0.
func WithPreEdge(pre1, pre2 float64) Option {
	return func(o *Operator) {
		o.pre1, o.pre2 = pre1, pre2
	}
}

// WithNormStart sets the start of the post-edge fit region relative to e0.
func WithNormStart(norm1 float64) Option {
	return func(o *Operator) {
		o.norm1 = norm1
	}
}

// WithNormEnd sets the end of the post-edge fit region relative to e0.
// By default the region extends to the last point.
func WithNormEnd(norm2 float64) Option {
	return func(o *Operator) {
		o.norm2 = &norm2
	}
}

// WithNNorm sets the degree of the post-edge polynomial.
func WithNNorm(n int) Option {
	return func(o *Operator) {
		o.nnorm = n
	}
}

// New creates an edge normalisation operator.
func New(opts ...Option) (*Operator, error) {
	o := &Operator{
		xColumn:  domain.ColumnEnergy,
		yColumns: []string{domain.ColumnMu},
		pre1:     DefaultPre1,
		pre2:     DefaultPre2,
		norm1:    DefaultNorm1,
		nnorm:    DefaultNNorm,
	}
	for _, opt := range opts {
		opt(o)
	}

	if !(o.pre1 < o.pre2) {
		return nil, fmt.Errorf("%w: pre1 (%g) must be below pre2 (%g)", domain.ErrInvalidInput, o.pre1, o.pre2)
	}
	if o.norm2 != nil && !(o.norm1 < *o.norm2) {
		return nil, fmt.Errorf("%w: norm1 (%g) must be below norm2 (%g)", domain.ErrInvalidInput, o.norm1, *o.norm2)
	}
	if o.nnorm < 0 || o.nnorm > 3 {
		return nil, fmt.Errorf("%w: nnorm must be between 0 and 3, got %d", domain.ErrInvalidInput, o.nnorm)
	}
	if len(o.yColumns) == 0 {
		return nil, fmt.Errorf("%w: no y columns", domain.ErrInvalidInput)
	}
	return o, nil
}

// Name returns the operator name.
func (o *Operator) Name() string {
	return Name
}

// Config returns the operator parameters. Unset e0 and norm2 are omitted.
func (o *Operator) Config() map[string]any {
	cfg := map[string]any{
		"x_column":  o.xColumn,
		"y_columns": slices.Clone(o.yColumns),
		"pre1":      o.pre1,
		"pre2":      o.pre2,
		"norm1":     o.norm1,
		"nnorm":     o.nnorm,
	}
	if o.e0 != nil {
		cfg["e0"] = *o.e0
	}
	if o.norm2 != nil {
		cfg["norm2"] = *o.norm2
	}
	return cfg
}

// ProcessData returns a table of the energy column and the flattened
// normalised y columns.
func (o *Operator) ProcessData(_ context.Context, data *domain.Table, _ map[string]any) (*domain.Table, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no data", domain.ErrInvalidInput)
	}
	energy, ok := data.Column(o.xColumn)
	if !ok {
		return nil, fmt.Errorf("%w: column %s not found", domain.ErrNormalisation, o.xColumn)
	}

	names := []string{o.xColumn}
	values := [][]float64{slices.Clone(energy)}
	for _, col := range o.yColumns {
		mu, ok := data.Column(col)
		if !ok {
			return nil, fmt.Errorf("%w: column %s not found", domain.ErrNormalisation, col)
		}
		edge, err := o.Normalise(energy, mu)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		names = append(names, col)
		values = append(values, edge.Flat)
	}
	return domain.TableFromColumns(names, values)
}

// Edge is the result of normalising one spectrum.
type Edge struct {
	E0   float64
	Step float64

	// Norm is (mu - pre-edge line) / step.
	Norm []float64

	// Flat is Norm with the post-edge curvature removed above e0.
	Flat []float64
}

// Normalise normalises mu measured at strictly increasing energy.
func (o *Operator) Normalise(energy, mu []float64) (*Edge, error) {
	n := len(energy)
	if n != len(mu) {
		return nil, fmt.Errorf("%w: %d energies for %d values", domain.ErrNormalisation, n, len(mu))
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, got %d", domain.ErrNormalisation, n)
	}
	for i := 1; i < n; i++ {
		if !(energy[i] > energy[i-1]) {
			return nil, fmt.Errorf("%w: energy is not strictly increasing at row %d", domain.ErrNormalisation, i)
		}
	}

	var e0 float64
	if o.e0 != nil {
		e0 = *o.e0
	} else {
		found, err := FindE0(energy, mu)
		if err != nil {
			return nil, err
		}
		e0 = found
	}

	norm2 := energy[n-1] - e0
	if o.norm2 != nil {
		norm2 = *o.norm2
	}

	pre, err := fitRegion(energy, mu, e0, o.pre1, o.pre2, 1)
	if err != nil {
		return nil, fmt.Errorf("pre-edge: %w", err)
	}
	post, err := fitRegion(energy, mu, e0, o.norm1, norm2, o.nnorm)
	if err != nil {
		return nil, fmt.Errorf("post-edge: %w", err)
	}

	preE0, postE0 := evaluate(pre, 0), evaluate(post, 0)
	step := postE0 - preE0
	if math.IsNaN(step) || math.IsInf(step, 0) ||
		math.Abs(step) <= stepTolerance*math.Max(math.Abs(preE0), math.Abs(postE0)) {
		return nil, fmt.Errorf("%w: no edge step at e0 %g (step %g)", domain.ErrNormalisation, e0, step)
	}

	ie0 := nearestIndex(energy, e0)
	residue := func(i int) float64 {
		dx := energy[i] - e0
		return (evaluate(post, dx) - evaluate(pre, dx)) / step
	}

	edge := &Edge{
		E0:   e0,
		Step: step,
		Norm: make([]float64, n),
		Flat: make([]float64, n),
	}
	offset := residue(ie0)
	for i := range energy {
		dx := energy[i] - e0
		edge.Norm[i] = (mu[i] - evaluate(pre, dx)) / step
		edge.Flat[i] = edge.Norm[i]
		if i >= ie0 {
			edge.Flat[i] -= residue(i) - offset
		}
	}
	return edge, nil
}

// FindE0 returns the energy of the largest finite derivative of mu,
// ignoring the first and last point.
func FindE0(energy, mu []float64) (float64, error) {
	best, at := math.Inf(-1), -1
	for i := 1; i < len(energy)-1; i++ {
		d := (mu[i+1] - mu[i-1]) / (energy[i+1] - energy[i-1])
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if d > best {
			best, at = d, i
		}
	}
	if at < 0 {
		return 0, fmt.Errorf("%w: no finite derivative to locate e0", domain.ErrNormalisation)
	}
	return energy[at], nil
}

// fitRegion fits a polynomial of the given degree to the finite points with
// lo <= energy - e0 <= hi. Coefficients are in powers of (energy - e0).
func fitRegion(energy, mu []float64, e0, lo, hi float64, degree int) ([]float64, error) {
	var xs, ys []float64
	for i, e := range energy {
		dx := e - e0
		if dx < lo || dx > hi || math.IsNaN(mu[i]) || math.IsInf(mu[i], 0) {
			continue
		}
		xs = append(xs, dx)
		ys = append(ys, mu[i])
	}
	if len(xs) < degree+1 || len(xs) < 2 {
		return nil, fmt.Errorf("%w: %d points in [%g, %g] around e0, need %d",
			domain.ErrNormalisation, len(xs), lo, hi, max(degree+1, 2))
	}
	return polyfit(xs, ys, degree)
}

// polyfit solves the least-squares polynomial fit of ys over xs.
func polyfit(xs, ys []float64, degree int) ([]float64, error) {
	a := mat.NewDense(len(xs), degree+1, nil)
	for i, x := range xs {
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= x
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, mat.NewVecDense(len(ys), slices.Clone(ys))); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNormalisation, err)
	}
	return slices.Clone(coef.RawVector().Data), nil
}

// evaluate computes the polynomial at x by Horner's rule.
func evaluate(coef []float64, x float64) float64 {
	y := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		y = y*x + coef[i]
	}
	return y
}

// nearestIndex returns the index of the energy closest to e.
func nearestIndex(energy []float64, e float64) int {
	best := 0
	for i, v := range energy {
		if math.Abs(v-e) < math.Abs(energy[best]-e) {
			best = i
		}
	}
	return best
}
