package domain

import (
	"fmt"
	"slices"
)

// Table holds named float64 columns of equal length, in column order.
type Table struct {
	columns []string
	data    map[string][]float64
}

// NewTable creates an empty table with the given columns.
// Duplicate column names are rejected.
func NewTable(columns ...string) (*Table, error) {
	t := &Table{data: make(map[string][]float64, len(columns))}
	for _, c := range columns {
		if _, ok := t.data[c]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidInput, c)
		}
		t.columns = append(t.columns, c)
		t.data[c] = nil
	}
	return t, nil
}

// TableFromColumns builds a table from column slices, which must all have
// the same length. The slices are used without copying.
func TableFromColumns(columns []string, values [][]float64) (*Table, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%w: %d column names for %d columns", ErrInvalidInput, len(columns), len(values))
	}
	t, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	for i, c := range columns {
		if i > 0 && len(values[i]) != len(values[0]) {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d",
				ErrInvalidInput, c, len(values[i]), len(values[0]))
		}
		t.data[c] = values[i]
	}
	return t, nil
}

// AppendRow appends one value per column, in column order.
func (t *Table) AppendRow(row []float64) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("%w: row has %d values, want %d", ErrInvalidInput, len(row), len(t.columns))
	}
	for i, c := range t.columns {
		t.data[c] = append(t.data[c], row[i])
	}
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Column returns the values of the named column. The returned slice is
// shared with the table and must not be modified.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.data[name]
	return v, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.data[t.columns[0]])
}

// Select returns a new table holding copies of the named columns, renamed
// through rename when a mapping exists.
func (t *Table) Select(rename map[string]string, columns ...string) (*Table, error) {
	names := make([]string, len(columns))
	values := make([][]float64, len(columns))
	for i, c := range columns {
		v, ok := t.data[c]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, c)
		}
		names[i] = c
		if to, ok := rename[c]; ok {
			names[i] = to
		}
		values[i] = slices.Clone(v)
	}
	return TableFromColumns(names, values)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: slices.Clone(t.columns),
		data:    make(map[string][]float64, len(t.data)),
	}
	for c, v := range t.data {
		out.data[c] = slices.Clone(v)
	}
	return out
}
