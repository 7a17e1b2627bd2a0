package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates no normaliser handles a scan file.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedType indicates an unknown source or operator type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates another run holds the data directory.
	ErrIngestInProgress = errors.New("ingest in progress")

	// ErrNormalisation indicates an edge normalisation could not be fitted.
	ErrNormalisation = errors.New("edge normalisation failed")

	// Taxonomy sentinels. The typed errors below match these via errors.Is.

	// ErrParse indicates a malformed header or metadata block.
	ErrParse = errors.New("parse error")

	// ErrDerivation indicates raw columns could not be turned into channels.
	ErrDerivation = errors.New("derivation error")

	// ErrValidation indicates a record violated one or more invariants.
	ErrValidation = errors.New("validation error")

	// ErrCompatibility indicates an operator cannot act on a record.
	ErrCompatibility = errors.New("compatibility error")

	// ErrInterpolation indicates a degenerate grid or too few points.
	ErrInterpolation = errors.New("interpolation error")
)

// ParseError reports a malformed scan header.
// Line is 1-based; zero means the error is not tied to a line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error: line %d: %s", e.Line, e.Reason)
	}
	return "parse error: " + e.Reason
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DerivationError reports raw input that cannot produce channel records.
type DerivationError struct {
	// Missing lists required raw columns absent from the table.
	Missing []string

	// NonFinite counts rows per channel whose derived value was not finite.
	// Only populated under the strict numeric policy.
	NonFinite map[Channel]int
}

func (e *DerivationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns "+strings.Join(e.Missing, ", "))
	}
	for _, ch := range Channels() {
		if n := e.NonFinite[ch]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d non-finite %s values", n, ch))
		}
	}
	if len(parts) == 0 {
		return "derivation error"
	}
	return "derivation error: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrDerivation.
func (e *DerivationError) Is(target error) bool { return target == ErrDerivation }

// ValidationError carries every violated invariant of a record.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Violations, "; ")
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add records a violation.
func (e *ValidationError) Add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// Merge appends the violations of other, which may be nil.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Violations = append(e.Violations, other.Violations...)
}

// Err returns nil when no violation was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// CompatibilityError reports that a record's specs do not cover
// the requirements of an operator.
type CompatibilityError struct {
	Operator     string
	RecordSpecs  []string
	Requirements []string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("compatibility error: record specs are [%s], but %s requires [%s]",
		strings.Join(e.RecordSpecs, ", "), e.Operator, strings.Join(e.Requirements, ", "))
}

// Is reports whether target is ErrCompatibility.
func (e *CompatibilityError) Is(target error) bool { return target == ErrCompatibility }

// InterpolationError reports a grid that cannot be interpolated.
type InterpolationError struct {
	Column string
	Reason string
}

func (e *InterpolationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("interpolation error: column %s: %s", e.Column, e.Reason)
	}
	return "interpolation error: " + e.Reason
}

// Is reports whether target is ErrInterpolation.
func (e *InterpolationError) Is(target error) bool { return target == ErrInterpolation }
