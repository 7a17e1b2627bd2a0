package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func TestRecordsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range recordsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "show", "quality", "delete"}, names)
}

func TestRecordsCmd_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ingestFixture(t, env)

	out, err := env.run(t, "records", "list", "--element", "Cu", "--channel", "transmission")
	require.NoError(t, err, out)
	id := firstID(t, out)

	out, err = env.run(t, "records", "show", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Record: <"+id+" Cu K>")
	assert.Contains(t, out, "Specs:     ExperimentalXAS")
	assert.Contains(t, out, "Columns:   energy, mu")
	assert.Contains(t, out, "Rows:      30")
	assert.Contains(t, out, `"sample_id": "Cu foil"`)

	out, err = env.run(t, "records", "quality", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, id+": good")

	out, err = env.run(t, "records", "show", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"quality": "good"`)

	out, err = env.run(t, "records", "delete", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Record "+id+" deleted.")

	_, err = env.run(t, "records", "show", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = env.run(t, "records", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total: 5 records")
}

func TestRecordsCmd_QualityThresholds(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("[derive]\nfluorescence_sign = \"negative\"\n"), 0o600))
	ingestFixture(t, env)

	// Negated fluorescence is below zero at every point.
	out, err := env.run(t, "records", "list", "--element", "Fe", "--channel", "fluorescence")
	require.NoError(t, err, out)
	id := firstID(t, out)

	out, err = env.run(t, "records", "quality", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, id+": ugly")

	out, err = env.run(t, "records", "quality", "--negative", "1", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, id+": good")
}

func TestRecordsCmd_ListEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "records", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No records found.")

	ingestFixture(t, env)
	out, err = env.run(t, "records", "list", "--element", "Zn")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No records match the filters.")
}

func TestRecordsCmd_UnknownRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "records", "quality", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.run(t, "records", "delete", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
