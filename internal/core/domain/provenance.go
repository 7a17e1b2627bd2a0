package domain

import "time"

// ProvenanceTimeFormat is the layout of provenance and modification timestamps.
const ProvenanceTimeFormat = "2006-01-02 15:04:05"

// Metadata keys written by post-processing.
const (
	OperatorInformationKey = "operator_information"
	OperatorDetailsKey     = "operator_details"
	ModifiedKey            = "modified"
	DatasetKey             = "dataset"
	QualityKey             = "quality"
)

// OperatorDetails is the serializable configuration of an operator.
type OperatorDetails struct {
	Name   string         `json:"name"`
	Config map[string]any `json:"config"`
}

// Map returns the details as a metadata value.
func (d OperatorDetails) Map() map[string]any {
	cfg := make(map[string]any, len(d.Config))
	for k, v := range d.Config {
		cfg[k] = v
	}
	return map[string]any{"name": d.Name, "config": cfg}
}

// Provenance records which operator produced a record, and when.
type Provenance struct {
	// Operator is the configuration of the invoked operator.
	Operator OperatorDetails

	// Timestamp is when the operator ran, in UTC.
	Timestamp time.Time

	// Parent is the consumed record's ID. Nil for metadata-only operators.
	Parent *string
}

// Map returns the provenance as a metadata value.
func (p Provenance) Map() map[string]any {
	out := map[string]any{
		"operator": p.Operator.Map(),
		"dt":       p.Timestamp.UTC().Format(ProvenanceTimeFormat),
	}
	if p.Parent != nil {
		out["parent"] = *p.Parent
	}
	return out
}
