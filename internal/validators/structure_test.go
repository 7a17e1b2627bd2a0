package validators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func channelRecord(t *testing.T, energy []float64) *domain.ChannelRecord {
	t.Helper()
	mu := make([]float64, len(energy))
	data, err := domain.TableFromColumns([]string{"energy", "mu"}, [][]float64{energy, mu})
	require.NoError(t, err)
	return &domain.ChannelRecord{
		Channel:    domain.ChannelTransmission,
		Identifier: "uid-1",
		Data:       data,
		Metadata:   domain.NewMetadata("Scan-uid", "uid-1", "channel", "transmission"),
	}
}

func TestValidateStructure_Monotonic(t *testing.T) {
	tests := []struct {
		name   string
		energy []float64
		valid  bool
	}{
		{"strictly increasing", []float64{10, 11, 12}, true},
		{"duplicate", []float64{10, 10, 12}, false},
		{"decreasing", []float64{12, 11, 10}, false},
		{"NaN", []float64{10, math.NaN(), 12}, false},
		{"single row", []float64{10}, true},
		{"empty", []float64{}, true},
	}

	v := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChannel(channelRecord(t, tt.energy))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestValidateStructure_ReportsFirstBadStep(t *testing.T) {
	ve := ValidateStructure(channelRecord(t, []float64{1, 2, 2, 3, 1}))

	require.Len(t, ve.Violations, 1)
	assert.Contains(t, ve.Violations[0], "2 of 4 steps")
	assert.Contains(t, ve.Violations[0], "first at row 2 (2 -> 2)")
}

func TestValidateStructure_BatchesViolations(t *testing.T) {
	data, err := domain.TableFromColumns([]string{"energy", "i0"}, [][]float64{{2, 1}, {1, 1}})
	require.NoError(t, err)

	rec := &domain.ChannelRecord{
		Data:     data,
		Metadata: domain.NewMetadata("channel", "xanes"),
	}

	err = New(nil).ValidateChannel(rec)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Violations, 4)
	assert.Contains(t, ve.Violations[0], "missing [mu]")
	assert.Contains(t, ve.Violations[1], "strictly increasing")
	assert.Contains(t, ve.Violations[2], `"Scan-uid" is required`)
	assert.Contains(t, ve.Violations[3], `channel "xanes"`)
}

func TestValidateStructure_NilRecord(t *testing.T) {
	ve := ValidateStructure(nil)
	assert.Error(t, ve.Err())

	ve = ValidateStructure(&domain.ChannelRecord{Metadata: domain.NewMetadata("Scan-uid", "a", "channel", "reference")})
	assert.Equal(t, []string{"no data table"}, ve.Violations)
}
