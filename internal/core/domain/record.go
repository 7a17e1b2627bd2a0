package domain

import (
	"fmt"
	"time"
)

// StructureFamilyDataframe is the only structure family stored records use.
const StructureFamilyDataframe = "dataframe"

// SpecExperimentalXAS tags records holding measured XAS spectra.
const SpecExperimentalXAS = "ExperimentalXAS"

// Spec is a capability tag declared by a stored record or required by an operator.
type Spec struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// SpecNames returns the names of specs, in order.
func SpecNames(specs []Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// Record is a stored dataframe with its metadata document.
type Record struct {
	// ID is the store-assigned record identifier.
	ID string

	// StructureFamily is the store structure family, always "dataframe".
	StructureFamily string

	// Specs are the capability tags the record satisfies.
	Specs []Spec

	// Data is the stored table.
	Data *Table

	// Metadata is the nested metadata document.
	Metadata map[string]any

	// CreatedAt is when the record was written.
	CreatedAt time.Time

	// UpdatedAt is when the record metadata last changed.
	UpdatedAt time.Time
}

// Label returns "<id> <element> <edge>" for display.
func (r *Record) Label() string {
	element, _ := Lookup(r.Metadata, "sample_metadata", "element")
	edge, _ := Lookup(r.Metadata, "sample_metadata", "edge")
	return fmt.Sprintf("<%s %v %v>", r.ID, element, edge)
}

// RecordQuery filters stored records. Empty fields match everything.
type RecordQuery struct {
	Element  string
	Edge     string
	Dataset  string
	SampleID string
	Channel  string
}

// IsEmpty returns true when the query matches every record.
func (q RecordQuery) IsEmpty() bool {
	return q == RecordQuery{}
}

// Matches reports whether a metadata document satisfies the query.
func (q RecordQuery) Matches(md map[string]any) bool {
	return matchField(md, q.Element, "sample_metadata", "element") &&
		matchField(md, q.Edge, "sample_metadata", "edge") &&
		matchField(md, q.Dataset, "dataset") &&
		matchField(md, q.SampleID, "experiment_metadata", "sample_id") &&
		matchField(md, q.Channel, "channel")
}

func matchField(md map[string]any, want string, path ...string) bool {
	if want == "" {
		return true
	}
	got, ok := Lookup(md, path...)
	if !ok {
		return false
	}
	s, ok := got.(string)
	return ok && s == want
}

// Lookup walks nested maps along path.
func Lookup(md map[string]any, path ...string) (any, bool) {
	var cur any = md
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// CloneMetadata returns a deep copy of a nested metadata document.
// Nested maps and slices are copied; other values are shared.
func CloneMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMetadata(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
