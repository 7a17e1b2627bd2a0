// Package standardize resamples spectra onto a common linear grid.
package standardize

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Operator implements the interface.
var _ driven.DataOperator = (*Operator)(nil)

// Name is the registry name of the operator.
const Name = "StandardizeGrid"

// Operator interpolates columns onto nx evenly spaced points between x0
// and xf with a monotone cubic interpolant. Outside the measured range
// the nearest measured value is held.
type Operator struct {
	x0, xf   float64
	nx       int
	xColumn  string
	yColumns []string
}

// Option configures an Operator.
type Option func(*Operator)

// WithXColumn sets the grid column (default "energy").
func WithXColumn(name string) Option {
	return func(o *Operator) {
		o.xColumn = name
	}
}

// WithYColumns sets the interpolated columns (default ["mu"]).
func WithYColumns(names ...string) Option {
	return func(o *Operator) {
		o.yColumns = names
	}
}

// New creates a grid operator. A grid of one point holds x0 alone; longer
// grids need x0 and xf to differ.
func New(x0, xf float64, nx int, opts ...Option) (*Operator, error) {
	o := &Operator{
		x0:       x0,
		xf:       xf,
		nx:       nx,
		xColumn:  domain.ColumnEnergy,
		yColumns: []string{domain.ColumnMu},
	}
	for _, opt := range opts {
		opt(o)
	}

	if nx < 1 {
		return nil, fmt.Errorf("%w: nx must be at least 1, got %d", domain.ErrInvalidInput, nx)
	}
	if nx > 1 && x0 == xf {
		return nil, fmt.Errorf("%w: x0 and xf are both %g", domain.ErrInvalidInput, x0)
	}
	if len(o.yColumns) == 0 {
		return nil, fmt.Errorf("%w: no y columns", domain.ErrInvalidInput)
	}
	if slices.Contains(o.yColumns, o.xColumn) {
		return nil, fmt.Errorf("%w: %s is both x and y column", domain.ErrInvalidInput, o.xColumn)
	}
	return o, nil
}

// Name returns the operator name.
func (o *Operator) Name() string {
	return Name
}

// Config returns the operator parameters.
func (o *Operator) Config() map[string]any {
	return map[string]any{
		"x0":        o.x0,
		"xf":        o.xf,
		"nx":        o.nx,
		"x_column":  o.xColumn,
		"y_columns": slices.Clone(o.yColumns),
	}
}

// Grid returns the target grid.
func (o *Operator) Grid() []float64 {
	if o.nx == 1 {
		return []float64{o.x0}
	}
	return floats.Span(make([]float64, o.nx), o.x0, o.xf)
}

// ProcessData returns a table holding the grid and one interpolated
// column per y column.
func (o *Operator) ProcessData(_ context.Context, data *domain.Table, _ map[string]any) (*domain.Table, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no data", domain.ErrInvalidInput)
	}
	xs, ok := data.Column(o.xColumn)
	if !ok {
		return nil, &domain.InterpolationError{Column: o.xColumn, Reason: "column not found"}
	}
	if len(xs) < 2 {
		return nil, &domain.InterpolationError{
			Column: o.xColumn,
			Reason: fmt.Sprintf("need at least 2 points, got %d", len(xs)),
		}
	}

	order, err := monotonicOrder(xs)
	if err != nil {
		return nil, &domain.InterpolationError{Column: o.xColumn, Reason: err.Error()}
	}

	grid := o.Grid()
	names := []string{o.xColumn}
	values := [][]float64{grid}

	x := reorder(xs, order)
	for _, col := range o.yColumns {
		ys, ok := data.Column(col)
		if !ok {
			return nil, &domain.InterpolationError{Column: col, Reason: "column not found"}
		}

		var fb interp.FritschButland
		if err := fb.Fit(x, reorder(ys, order)); err != nil {
			return nil, &domain.InterpolationError{Column: col, Reason: err.Error()}
		}

		out := make([]float64, len(grid))
		for i, g := range grid {
			out[i] = fb.Predict(g)
		}
		names = append(names, col)
		values = append(values, out)
	}

	return domain.TableFromColumns(names, values)
}

// monotonicOrder reports whether xs is strictly increasing (nil order) or strictly
// decreasing (reversed order). Anything else, including NaN, is an error.
func monotonicOrder(xs []float64) ([]int, error) {
	increasing, decreasing := true, true
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			increasing = false
		}
		if !(xs[i] < xs[i-1]) {
			decreasing = false
		}
	}
	switch {
	case increasing:
		return nil, nil
	case decreasing:
		order := make([]int, len(xs))
		for i := range order {
			order[i] = len(xs) - 1 - i
		}
		return order, nil
	default:
		return nil, errors.New("values are not strictly monotonic")
	}
}

func reorder(v []float64, order []int) []float64 {
	if order == nil {
		return v
	}
	out := make([]float64, len(order))
	for i, j := range order {
		out[i] = v[j]
	}
	return out
}
