package iss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func channelRecord(md domain.Metadata) *domain.ChannelRecord {
	md.Set(domain.ChannelKey, "reference")
	md.Set(domain.IdentifierKey, "uid-1")
	return &domain.ChannelRecord{
		Channel:    domain.ChannelReference,
		Identifier: "uid-1",
		Metadata:   md,
	}
}

func TestShape(t *testing.T) {
	rec := channelRecord(domain.NewMetadata(
		"Facility-name", "NSLS-II",
		"Beamline-name", "ISS (8-ID)",
		"Element-symbol", "Cu",
		"Element-edge", "K",
		"Sample-name", "Cu foil",
		"Scan-transient_id", "61523",
	))

	doc, err := Shape(rec, DefaultShapeOptions())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"element": "Cu", "edge": "K"}, doc["sample_metadata"])
	assert.Equal(t, "xas", doc["measurement_type"])
	assert.Equal(t, "raw", doc["dataset"])
	assert.Equal(t, "reference", doc["channel"])

	experiment, ok := doc["experiment_metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NSLSII", experiment["facility"])
	assert.Equal(t, "ISS", experiment["beamline"])
	assert.Equal(t, "Cu foil", experiment["sample_id"])
	assert.Equal(t, "61523", experiment["Scan-transient_id"])
	assert.Equal(t, "uid-1", experiment["Scan-uid"])
	assert.Equal(t, "NSLS-II", experiment["Facility-name"])
	assert.NotContains(t, experiment, "channel")

	// The channel record keeps its own metadata.
	assert.True(t, rec.Metadata.Has(domain.ChannelKey))
}

func TestShape_Defaults(t *testing.T) {
	rec := channelRecord(domain.NewMetadata("Element.symbol", "Fe", "Element.edge", "L3"))

	doc, err := Shape(rec, ShapeOptions{Facility: "SSRL", Beamline: "BL2"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"element": "Fe", "edge": "L3"}, doc["sample_metadata"])
	assert.Equal(t, "raw", doc["dataset"])

	experiment := doc["experiment_metadata"].(map[string]any)
	assert.Equal(t, "SSRL", experiment["facility"])
	assert.Equal(t, "BL2", experiment["beamline"])
	assert.Equal(t, "uid-1", experiment["sample_id"])
	assert.Contains(t, experiment, "Element-symbol")
	assert.NotContains(t, experiment, "Element.symbol")
}

func TestShape_InvalidRecord(t *testing.T) {
	_, err := Shape(nil, DefaultShapeOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Shape(&domain.ChannelRecord{Channel: "xanes"}, DefaultShapeOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormaliseFacility(t *testing.T) {
	tests := map[string]string{
		"NSLS-II": "NSLSII",
		"nsls ii": "NSLSII",
		"NSLSII":  "NSLSII",
		"APS_20":  "APS20",
	}
	for in, want := range tests {
		assert.Equal(t, want, normaliseFacility(in), in)
	}
}
