package iss

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(fixture(3), HeaderOptions{SafeKeys: true})
	require.NoError(t, err)

	assert.Equal(t, fixtureHeader, h.Columns)
	assert.Equal(t, []string{"energy", "i0", "it", "ir", "iff", "aux1", "aux2", "aux3", "aux4"}, h.ColumnNames())
	assert.Equal(t, len(fixtureMetadata)+2, h.Line)
	assert.Equal(t, 1, h.HeaderLines)

	assert.Equal(t, []string{
		"Facility-name",
		"Facility-mode",
		"Beamline-name",
		"Scan-uid",
		"Scan-transient_id",
		"Element-symbol",
		"Element-edge",
		"Sample-name",
		"Scan-start_time",
	}, h.Metadata.Keys())

	uid, ok := h.Metadata.Get("Scan-uid")
	require.True(t, ok)
	assert.Equal(t, fixtureUID, uid)
}

func TestParseHeader_SplitsAtFirstSeparator(t *testing.T) {
	h, err := ParseHeader(fixture(0), HeaderOptions{SafeKeys: true})
	require.NoError(t, err)

	mode, _ := h.Metadata.Get("Facility-mode")
	assert.Equal(t, "Beamline: Top-Off", mode)

	start, _ := h.Metadata.Get("Scan-start_time")
	assert.Equal(t, "2022-03-14 10:21:07", start)
}

func TestParseHeader_UnsafeKeys(t *testing.T) {
	h, err := ParseHeader(fixture(0), HeaderOptions{})
	require.NoError(t, err)

	assert.True(t, h.Metadata.Has("Scan.uid"))
	assert.False(t, h.Metadata.Has("Scan-uid"))
}

func TestParseHeader_Whitespace(t *testing.T) {
	content := "#\tElement.symbol:   Fe  \n#  Element.edge :K\n#energy i0 it ir iff\r\n#\n1 2 3 4 5\n"

	h, err := ParseHeader([]byte(content), HeaderOptions{SafeKeys: true})
	require.NoError(t, err)

	symbol, _ := h.Metadata.Get("Element-symbol")
	assert.Equal(t, "Fe", symbol)
	edge, _ := h.Metadata.Get("Element-edge")
	assert.Equal(t, "K", edge)
	assert.Equal(t, "energy i0 it ir iff", h.Columns)
	assert.Equal(t, 3, h.Line)
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		opts     HeaderOptions
		wantLine int
	}{
		{
			name:    "no header",
			content: "# Scan.uid: abc\n1 2 3\n",
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name:     "second header in strict mode",
			content:  "# Scan.uid: abc\n# energy mu\n# energy i0\n1 2\n",
			opts:     HeaderOptions{StrictHeader: true},
			wantLine: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader([]byte(tt.content), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse))

			var pe *domain.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantLine, pe.Line)
		})
	}
}

func TestParseHeader_FirstHeaderWins(t *testing.T) {
	content := "# energy mu\n# energy i0\n"

	h, err := ParseHeader([]byte(content), HeaderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "energy mu", h.Columns)
	assert.Equal(t, 1, h.Line)
	assert.Equal(t, 2, h.HeaderLines)
}

func TestParse(t *testing.T) {
	scan, err := Parse(fixture(630), HeaderOptions{SafeKeys: true})
	require.NoError(t, err)

	assert.Equal(t, scan.ColumnNames(), scan.Table.Columns())
	assert.Equal(t, 630, scan.Table.Len())

	energy, ok := scan.Table.Column("energy")
	require.True(t, ok)
	assert.InDelta(t, 8800.0, energy[0], 1e-9)
	assert.InDelta(t, 8800.0+0.5*629, energy[629], 1e-9)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	content := "# energy mu\n1 2\n\n   \n3 4\n"

	scan, err := Parse([]byte(content), HeaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Table.Len())
}

func TestParse_RowErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"too few values", "# energy mu\n1 2\n3\n", 3},
		{"too many values", "# energy mu\n1 2 3\n", 2},
		{"not a number", "# energy mu\n1 x\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), HeaderOptions{})

			var pe *domain.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantLine, pe.Line)
		})
	}
}

func TestParse_DuplicateColumns(t *testing.T) {
	_, err := Parse([]byte("# energy energy\n1 2\n"), HeaderOptions{})

	var pe *domain.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}

func TestParse_SpecialValues(t *testing.T) {
	scan, err := Parse([]byte("# energy mu\n1 NaN\n2 -Inf\n"), HeaderOptions{})
	require.NoError(t, err)

	mu, _ := scan.Table.Column("mu")
	assert.True(t, math.IsNaN(mu[0]))
	assert.True(t, math.IsInf(mu[1], -1))
}
