package iss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/validators"
)

func TestRoundTrip_ParseDeriveValidate(t *testing.T) {
	v, err := validators.NewDefault()
	require.NoError(t, err)

	n := New()
	records, err := n.Normalise(context.Background(), &domain.RawScan{URI: "cu.dat", Content: fixture(630)})
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i := range records {
		rec := &records[i]
		assert.NoError(t, v.ValidateChannel(rec), rec.Channel)

		doc, err := n.Shape(rec)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateDocument(domain.StructureFamilyDataframe, rec.Data, doc), rec.Channel)
	}
}
