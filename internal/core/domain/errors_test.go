package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrIngestInProgress", ErrIngestInProgress},
		{"ErrNormalisation", ErrNormalisation},
		{"ErrParse", ErrParse},
		{"ErrDerivation", ErrDerivation},
		{"ErrValidation", ErrValidation},
		{"ErrCompatibility", ErrCompatibility},
		{"ErrInterpolation", ErrInterpolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"parse", &ParseError{Line: 3, Reason: "no header"}, ErrParse},
		{"derivation", &DerivationError{Missing: []string{"i0"}}, ErrDerivation},
		{"validation", &ValidationError{Violations: []string{"x"}}, ErrValidation},
		{"compatibility", &CompatibilityError{Operator: "op"}, ErrCompatibility},
		{"interpolation", &InterpolationError{Reason: "too few points"}, ErrInterpolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("scan.dat: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.NotErrorIs(t, wrapped, ErrNotFound)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	assert.Equal(t, "parse error: line 7: bad row", (&ParseError{Line: 7, Reason: "bad row"}).Error())
	assert.Equal(t, "parse error: no header line", (&ParseError{Reason: "no header line"}).Error())
}

func TestDerivationError_Message(t *testing.T) {
	err := &DerivationError{
		Missing:   []string{"it", "iff"},
		NonFinite: map[Channel]int{ChannelReference: 2},
	}
	assert.Equal(t, "derivation error: missing columns it, iff; 2 non-finite reference values", err.Error())
}

func TestValidationError_Batches(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.Err())

	verr.Add("missing %s", "channel")
	verr.Merge(&ValidationError{Violations: []string{"energy not increasing"}})
	verr.Merge(nil)

	err := verr.Err()
	require.Error(t, err)
	var target *ValidationError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, []string{"missing channel", "energy not increasing"}, target.Violations)
	assert.Contains(t, err.Error(), "missing channel; energy not increasing")
}

func TestValidationError_NilErr(t *testing.T) {
	var verr *ValidationError
	assert.NoError(t, verr.Err())
}

func TestCompatibilityError_Message(t *testing.T) {
	err := &CompatibilityError{
		Operator:     "DataQualityLabel",
		RecordSpecs:  []string{"Other"},
		Requirements: []string{"ExperimentalXAS"},
	}
	assert.Contains(t, err.Error(), "[Other]")
	assert.Contains(t, err.Error(), "DataQualityLabel requires [ExperimentalXAS]")
}
