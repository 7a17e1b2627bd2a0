package postprocessors

import (
	"slices"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// CheckCompatibility returns a *domain.CompatibilityError unless the record
// specs include every spec the operator requires. Only names are compared.
func CheckCompatibility(op driven.NodeOperator, specs []domain.Spec) error {
	have := domain.SpecNames(specs)
	want := domain.SpecNames(op.Requirements())

	for _, name := range want {
		if !slices.Contains(have, name) {
			slices.Sort(have)
			slices.Sort(want)
			return &domain.CompatibilityError{
				Operator:     op.Name(),
				RecordSpecs:  have,
				Requirements: want,
			}
		}
	}
	return nil
}
