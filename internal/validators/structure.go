package validators

import (
	"strings"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// RequiredColumns are the columns every XAS record must carry.
func RequiredColumns() []string {
	return []string{domain.ColumnEnergy, domain.ColumnMu}
}

// RequiredChannelKeys are the flat metadata keys every channel record must carry.
func RequiredChannelKeys() []string {
	return []string{domain.IdentifierKey, domain.ChannelKey}
}

// checkStructureFamily records a violation unless records are dataframes.
func checkStructureFamily(family string, ve *domain.ValidationError) {
	if family != domain.StructureFamilyDataframe {
		ve.Add("structure_family %q != %q", family, domain.StructureFamilyDataframe)
	}
}

// checkColumns records a violation when the table lacks a required column.
func checkColumns(data *domain.Table, ve *domain.ValidationError) {
	if data == nil {
		ve.Add("no data table")
		return
	}
	var missing []string
	for _, c := range RequiredColumns() {
		if !data.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		ve.Add("columns [%s] must include [%s], missing [%s]",
			strings.Join(data.Columns(), ", "),
			strings.Join(RequiredColumns(), ", "),
			strings.Join(missing, ", "))
	}
}

// checkMonotonic records a violation unless energy increases strictly
// row to row. Duplicates and NaN both fail.
func checkMonotonic(data *domain.Table, ve *domain.ValidationError) {
	if data == nil {
		return
	}
	energy, ok := data.Column(domain.ColumnEnergy)
	if !ok {
		return
	}
	bad, first := 0, -1
	for i := 1; i < len(energy); i++ {
		if !(energy[i]-energy[i-1] > 0) {
			bad++
			if first < 0 {
				first = i
			}
		}
	}
	if bad > 0 {
		ve.Add("energy must be strictly increasing: %d of %d steps are not, first at row %d (%g -> %g)",
			bad, len(energy)-1, first, energy[first-1], energy[first])
	}
}

// checkChannelKeys records a violation for each missing or blank required key.
func checkChannelKeys(md domain.Metadata, ve *domain.ValidationError) {
	for _, key := range RequiredChannelKeys() {
		v, ok := md.Get(key)
		if !ok || strings.TrimSpace(v) == "" {
			ve.Add("metadata key %q is required", key)
		}
	}
	if v, ok := md.Get(domain.ChannelKey); ok && v != "" && !domain.Channel(v).IsValid() {
		ve.Add("channel %q is not one of transmission, fluorescence, reference", v)
	}
}

// ValidateStructure checks a derived channel record: required columns,
// strictly increasing energy and the identifier and channel keys.
// Every violation is reported.
func ValidateStructure(rec *domain.ChannelRecord) *domain.ValidationError {
	ve := &domain.ValidationError{}
	if rec == nil {
		ve.Add("no channel record")
		return ve
	}
	checkColumns(rec.Data, ve)
	checkMonotonic(rec.Data, ve)
	checkChannelKeys(rec.Metadata, ve)
	return ve
}
