package services

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

const scanHeader = "# energy i0 it ir iff aux1 aux2 aux3 aux4"

// scanFile builds an ISS scan file for the given scan uid and element.
func scanFile(uid, element string, rows int) []byte {
	var b strings.Builder
	for _, line := range []string{
		"# Facility.name: NSLS-II",
		"# Beamline.name: ISS (8-ID)",
		"# Scan.uid: " + uid,
		"# Element.symbol: " + element,
		"# Element.edge: K",
		"# Sample.name: " + element + " foil",
		"# ",
		scanHeader,
	} {
		b.WriteString(line + "\n")
	}
	for i := 0; i < rows; i++ {
		b.WriteString(scanRow(8800.0+0.5*float64(i), i) + "\n")
	}
	return []byte(b.String())
}

func scanRow(energy float64, i int) string {
	i0 := 1.0e5 - 10*float64(i)
	it := i0 * math.Exp(-(0.4 + 0.001*float64(i)))
	ir := i0 * math.Exp(-0.2)
	iff := 2000.0 + float64(i)
	return fmt.Sprintf("%.6f %.6f %.6f %.6f %.6f 0.1 0.2 0.3 0.4", energy, i0, it, ir, iff)
}

// writeScan writes content under dir and returns the file path.
func writeScan(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

var xasSpecs = []domain.Spec{{Name: domain.SpecExperimentalXAS}}

// spectrum returns an (energy, mu) table of n points from 8800 eV in
// 0.5 eV steps.
func spectrum(t *testing.T, n int, mu func(i int) float64) *domain.Table {
	t.Helper()
	energy := make([]float64, n)
	values := make([]float64, n)
	for i := range energy {
		energy[i] = 8800.0 + 0.5*float64(i)
		values[i] = mu(i)
	}
	table, err := domain.TableFromColumns(
		[]string{domain.ColumnEnergy, domain.ColumnMu},
		[][]float64{energy, values},
	)
	require.NoError(t, err)
	return table
}

// seedRecord writes a store-shaped record and returns its ID.
func seedRecord(
	t *testing.T,
	store driven.RecordWriter,
	element string,
	channel domain.Channel,
	specs []domain.Spec,
	data *domain.Table,
) string {
	t.Helper()
	sample := map[string]any{"element": element, "edge": "K"}
	experiment := map[string]any{
		"facility":  "NSLSII",
		"beamline":  "ISS",
		"sample_id": element + " foil",
	}
	metadata := map[string]any{
		"sample_metadata":     sample,
		"experiment_metadata": experiment,
		"measurement_type":    "xas",
		domain.DatasetKey:     "raw",
		domain.ChannelKey:     channel.String(),
	}
	id, err := store.Write(context.Background(), data, metadata, specs)
	require.NoError(t, err)
	return id
}

// constant returns a mu function with the same value at every point.
func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}
