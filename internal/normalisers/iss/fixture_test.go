package iss

import (
	"fmt"
	"math"
	"strings"
)

const fixtureUID = "d66dda13-d69c-4ca6-8fb7-76290ad71073"

const fixtureHeader = "energy i0 it ir iff aux1 aux2 aux3 aux4"

// fixtureMetadata mirrors the comment block of an ISS scan file.
var fixtureMetadata = []string{
	"# Facility.name: NSLS-II",
	"# Facility.mode: Beamline: Top-Off",
	"# Beamline.name: ISS (8-ID)",
	"# Scan.uid: " + fixtureUID,
	"# Scan.transient_id: 61523",
	"# Element.symbol: Cu",
	"# Element.edge: K",
	"# Sample.name: Cu foil",
	"# Scan.start_time: 2022-03-14 10:21:07",
}

// fixtureRow returns one physically plausible data row.
func fixtureRow(i int) []float64 {
	energy := 8800.0 + 0.5*float64(i)
	i0 := 1.0e5 - 10*float64(i)
	it := i0 * math.Exp(-(0.4 + 0.001*float64(i)))
	ir := i0 * math.Exp(-0.2)
	iff := 2000.0 + float64(i)
	return []float64{energy, i0, it, ir, iff, 0.1, 0.2, 0.3, 0.4}
}

// fixture builds an ISS scan file with the given number of data rows.
func fixture(rows int, metadata ...string) []byte {
	if metadata == nil {
		metadata = fixtureMetadata
	}

	var b strings.Builder
	for _, line := range metadata {
		b.WriteString(line + "\n")
	}
	b.WriteString("# \n")
	b.WriteString("# " + fixtureHeader + "\n")
	for i := 0; i < rows; i++ {
		row := fixtureRow(i)
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = fmt.Sprintf("%.6f", v)
		}
		b.WriteString(strings.Join(fields, " ") + "\n")
	}
	return []byte(b.String())
}
