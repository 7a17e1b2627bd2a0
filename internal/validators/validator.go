// Package validators enforces record invariants before a write: the
// structural checks on derived channel records, and the typed
// ExperimentalXAS schema on store-shaped documents.
package validators

import (
	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.RecordValidator = (*Validator)(nil)

// Validator runs the structural checks and, when a schema is set, the
// typed schema checks.
type Validator struct {
	schema *Schema
}

// New creates a validator. A nil schema disables document validation
// beyond the structure family and required columns.
func New(schema *Schema) *Validator {
	return &Validator{schema: schema}
}

// NewDefault creates a validator with the default schema.
func NewDefault() (*Validator, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return New(schema), nil
}

// ValidateChannel checks a derived channel record.
func (v *Validator) ValidateChannel(rec *domain.ChannelRecord) error {
	return ValidateStructure(rec).Err()
}

// ValidateDocument checks a store-shaped record.
func (v *Validator) ValidateDocument(structureFamily string, data *domain.Table, metadata map[string]any) error {
	if v.schema != nil {
		return v.schema.Validate(structureFamily, data, metadata).Err()
	}

	ve := &domain.ValidationError{}
	checkStructureFamily(structureFamily, ve)
	checkColumns(data, ve)
	return ve.Err()
}
