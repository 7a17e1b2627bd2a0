package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func ingestFixture(t *testing.T, env *testEnv) {
	t.Helper()
	root := writeScans(t, map[string][]byte{
		"cu.dat": scanFile(uidCu, "Cu", 30),
		"fe.dat": scanFile(uidFe, "Fe", 30),
	})
	out, err := env.run(t, "ingest", root)
	require.NoError(t, err, out)
}

func TestPostprocessCmd_OperatorFlags(t *testing.T) {
	env := newTestEnv(t)
	ingestFixture(t, env)

	out, err := env.run(t, "postprocess",
		"--element", "Cu", "--channel", "transmission",
		"--op", "StandardizeGrid:x0=8805,xf=8815,nx=21",
		"--op", "DataQualityLabel")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pipeline StandardizeGrid->DataQualityLabel: 1 records processed, 1 written, 0 failed.")
	assert.Contains(t, out, "PARENT\tRESULT")

	out, err = env.run(t, "records", "list", "--dataset", "StandardizeGrid->DataQualityLabel")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Cu\tK\ttransmission\tStandardizeGrid->DataQualityLabel\tCu foil\t21")
	assert.Contains(t, out, "Total: 1 records")
}

func TestPostprocessCmd_PipelineFromConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte(`
[[postprocess.operators]]
name = "StandardizeGrid"
x0 = 8805.0
xf = 8815.0
nx = 11
`), 0o600))
	ingestFixture(t, env)

	out, err := env.run(t, "postprocess", "--dataset", "raw")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pipeline StandardizeGrid: 6 records processed, 6 written, 0 failed.")
}

func TestPostprocessCmd_NoOperators(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "postprocess")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPostprocessCmd_UnknownOperator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "postprocess", "--op", "Smooth")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestPostprocessCmd_FailuresAreReported(t *testing.T) {
	env := newTestEnv(t)
	ingestFixture(t, env)

	// No record has a "time" column to regrid on.
	out, err := env.run(t, "postprocess", "--element", "Fe",
		"--op", "StandardizeGrid:x0=0,xf=1,nx=5,x_column=time")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 records failed")
	assert.ErrorIs(t, err, domain.ErrInterpolation)
	assert.Contains(t, out, "SOURCE\tCHANNEL\tSTAGE\tERROR")
	assert.Contains(t, out, "operator")
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "name only",
			spec: "DataQualityLabel",
			want: map[string]any{"name": "DataQualityLabel"},
		},
		{
			name: "numeric parameters",
			spec: "StandardizeGrid:x0=8800,xf=9000.5,nx=201",
			want: map[string]any{"name": "StandardizeGrid", "x0": int64(8800), "xf": 9000.5, "nx": int64(201)},
		},
		{
			name: "list and string parameters",
			spec: "StandardizeGrid: x_column = energy , y_columns=mu|mu_ref",
			want: map[string]any{
				"name":      "StandardizeGrid",
				"x_column":  "energy",
				"y_columns": []any{"mu", "mu_ref"},
			},
		},
		{name: "missing name", spec: ":x0=1", wantErr: true},
		{name: "not key value", spec: "StandardizeGrid:x0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOperator(tt.spec)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
