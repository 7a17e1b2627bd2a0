package validators

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func TestDefaultVocabulary(t *testing.T) {
	vocab, err := DefaultVocabulary()
	require.NoError(t, err)

	assert.Len(t, vocab.Elements(), 118)
	for _, el := range []string{"H", "Cu", "Fe", "U", "Og"} {
		assert.True(t, vocab.HasElement(el), el)
	}
	for _, edge := range []string{"K", "L1", "L2", "L3", "M5"} {
		assert.True(t, vocab.HasEdge(edge), edge)
	}
	assert.False(t, vocab.HasElement("cu"))
	assert.False(t, vocab.HasEdge("k"))

	again, err := DefaultVocabulary()
	require.NoError(t, err)
	assert.Same(t, vocab, again)
}

func TestParseVocabulary(t *testing.T) {
	vocab, err := ParseVocabulary([]byte(`{"elements": ["Fe", "Cu"], "edges": ["K"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cu", "Fe"}, vocab.Elements())
	assert.Equal(t, []string{"K"}, vocab.Edges())

	_, err = ParseVocabulary([]byte(`{"elements": ["Fe"]}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ParseVocabulary([]byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"elements": ["Ni"], "edges": ["L3"]}`), 0o600))

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.True(t, vocab.HasElement("Ni"))
	assert.True(t, vocab.HasEdge("L3"))

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
