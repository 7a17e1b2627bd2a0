package iss

import (
	"fmt"
	"strings"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// Store document keys.
const (
	SampleMetadataKey     = "sample_metadata"
	ExperimentMetadataKey = "experiment_metadata"
	MeasurementTypeKey    = "measurement_type"

	ElementKey  = "element"
	EdgeKey     = "edge"
	FacilityKey = "facility"
	BeamlineKey = "beamline"
	SampleIDKey = "sample_id"
)

// MeasurementXAS is the measurement type of every ingested record.
const MeasurementXAS = "xas"

// DatasetRaw tags records written straight from ingest.
const DatasetRaw = "raw"

// Default experiment values for scans that do not name them.
const (
	DefaultFacility = "NSLSII"
	DefaultBeamline = "ISS"
)

// Raw metadata keys read by the shaper. Both separator forms are accepted
// so files parsed without safe keys shape the same way.
var (
	elementKeys  = []string{"Element-symbol", "Element.symbol"}
	edgeKeys     = []string{"Element-edge", "Element.edge"}
	facilityKeys = []string{"Facility-name", "Facility.name"}
	beamlineKeys = []string{"Beamline-name", "Beamline.name"}
	sampleKeys   = []string{"Sample-name", "Sample.name"}
)

// ShapeOptions controls the store document built from a channel record.
type ShapeOptions struct {
	Facility string
	Beamline string
	Dataset  string
}

// DefaultShapeOptions returns the ISS defaults.
func DefaultShapeOptions() ShapeOptions {
	return ShapeOptions{
		Facility: DefaultFacility,
		Beamline: DefaultBeamline,
		Dataset:  DatasetRaw,
	}
}

// Shape nests the flat metadata of a channel record into the document
// the record store indexes:
//
//	{sample_metadata: {element, edge},
//	 experiment_metadata: {facility, beamline, sample_id, <raw keys>},
//	 measurement_type: "xas", dataset: "raw", channel: <channel>}
func Shape(rec *domain.ChannelRecord, opts ShapeOptions) (map[string]any, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil channel record", domain.ErrInvalidInput)
	}
	if !rec.Channel.IsValid() {
		return nil, fmt.Errorf("%w: channel %q", domain.ErrInvalidInput, rec.Channel)
	}
	if opts.Dataset == "" {
		opts.Dataset = DatasetRaw
	}

	md := rec.Metadata.Clone()
	md.Delete(domain.ChannelKey)
	element, _ := md.Lookup(elementKeys...)
	edge, _ := md.Lookup(edgeKeys...)

	experiment := make(map[string]any, md.Len()+3)
	for _, key := range md.Keys() {
		v, _ := md.Get(key)
		experiment[domain.SafeKey(key)] = v
	}

	facility := opts.Facility
	if v, ok := md.Lookup(facilityKeys...); ok && v != "" {
		facility = normaliseFacility(v)
	}
	beamline := opts.Beamline
	if v, ok := md.Lookup(beamlineKeys...); ok {
		if fields := strings.Fields(v); len(fields) > 0 {
			beamline = fields[0]
		}
	}
	sampleID := rec.Identifier
	if v, ok := md.Lookup(sampleKeys...); ok && strings.TrimSpace(v) != "" {
		sampleID = strings.TrimSpace(v)
	}

	experiment[FacilityKey] = facility
	experiment[BeamlineKey] = beamline
	experiment[SampleIDKey] = sampleID

	return map[string]any{
		SampleMetadataKey: map[string]any{
			ElementKey: strings.TrimSpace(element),
			EdgeKey:    strings.TrimSpace(edge),
		},
		ExperimentMetadataKey: experiment,
		MeasurementTypeKey:    MeasurementXAS,
		domain.DatasetKey:     opts.Dataset,
		domain.ChannelKey:     rec.Channel.String(),
	}, nil
}

// normaliseFacility drops separators and upper-cases, so "NSLS-II" and
// "nsls ii" both become "NSLSII".
func normaliseFacility(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r == '-' || r == '_' || r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
