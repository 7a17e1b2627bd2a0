package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestReport_SortIsDeterministic(t *testing.T) {
	report := &IngestReport{
		Written: []WrittenRecord{
			{URI: "b.dat", Channel: ChannelReference},
			{URI: "a.dat", Channel: ChannelReference},
			{URI: "a.dat", Channel: ChannelTransmission},
			{URI: "a.dat", Channel: ChannelFluorescence},
		},
		Failures: []Failure{
			{URI: "z.dat", Stage: StageNormalise, Err: errors.New("z")},
			{URI: "c.dat", Stage: StageNormalise, Err: errors.New("c")},
		},
	}

	report.Sort()

	assert.Equal(t, "a.dat", report.Written[0].URI)
	assert.Equal(t, ChannelTransmission, report.Written[0].Channel)
	assert.Equal(t, ChannelFluorescence, report.Written[1].Channel)
	assert.Equal(t, ChannelReference, report.Written[2].Channel)
	assert.Equal(t, "b.dat", report.Written[3].URI)
	assert.Equal(t, "c.dat", report.Failures[0].URI)
}

func TestIngestReport_Err(t *testing.T) {
	report := &IngestReport{}
	assert.NoError(t, report.Err())
	assert.Equal(t, 0, report.FailedFiles())

	perr := &ParseError{Reason: "no header line"}
	report.Failures = append(report.Failures,
		Failure{URI: "a.dat", Stage: StageNormalise, Err: perr},
		Failure{URI: "b.dat", Channel: ChannelReference, Stage: StageValidate, Err: &ValidationError{Violations: []string{"x"}}},
		Failure{URI: "b.dat", Channel: ChannelFluorescence, Stage: StageValidate, Err: &ValidationError{Violations: []string{"y"}}},
	)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, report.FailedFiles())
}

func TestPostprocessReport_Err(t *testing.T) {
	report := &PostprocessReport{}
	assert.NoError(t, report.Err())

	report.Failures = append(report.Failures, Failure{URI: "rec-1", Stage: StageCompatible, Err: &CompatibilityError{}})
	assert.ErrorIs(t, report.Err(), ErrCompatibility)
}

func TestChannel_IsValid(t *testing.T) {
	for _, ch := range Channels() {
		assert.True(t, ch.IsValid(), ch.String())
	}
	assert.False(t, Channel("fluoresence").IsValid())
}
