// Package iss reads scan files written by the ISS beamline: a "#" comment
// block of "Key: value" metadata lines and one column header line, followed
// by whitespace-delimited numeric rows. Each file yields three channel
// records (transmission, fluorescence, reference).
package iss

import (
	"context"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Name is the registry name of the ISS normaliser.
const Name = "iss"

// Normaliser handles ISS scan files.
type Normaliser struct {
	header HeaderOptions
	derive DeriveOptions
	shape  ShapeOptions
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithSafeKeys sets whether "." in metadata keys is rewritten to "-".
func WithSafeKeys(safe bool) Option {
	return func(n *Normaliser) {
		n.header.SafeKeys = safe
	}
}

// WithStrictHeader sets whether a second header line is a parse error.
func WithStrictHeader(strict bool) Option {
	return func(n *Normaliser) {
		n.header.StrictHeader = strict
	}
}

// WithPolicy sets the numeric policy for non-finite derived values.
func WithPolicy(p NumericPolicy) Option {
	return func(n *Normaliser) {
		n.derive.Policy = p
	}
}

// WithFluorescenceSign sets the fluorescence sign convention.
func WithFluorescenceSign(s FluorescenceSign) Option {
	return func(n *Normaliser) {
		n.derive.FluorescenceSign = s
	}
}

// WithIDGenerator replaces the generator used for synthetic identifiers.
func WithIDGenerator(newID func() string) Option {
	return func(n *Normaliser) {
		n.derive.NewID = newID
	}
}

// WithExperimentDefaults sets the facility and beamline used when a scan
// does not name them.
func WithExperimentDefaults(facility, beamline string) Option {
	return func(n *Normaliser) {
		if facility != "" {
			n.shape.Facility = facility
		}
		if beamline != "" {
			n.shape.Beamline = beamline
		}
	}
}

// New creates an ISS normaliser. Keys are made safe by default.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{
		header: HeaderOptions{SafeKeys: true},
		derive: DefaultDeriveOptions(),
		shape:  DefaultShapeOptions(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return Name
}

// SupportedFormats returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedFormats() []string {
	return []string{domain.DefaultScanFormat}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise parses a raw scan and derives its three channel records.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawScan) ([]domain.ChannelRecord, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scan, err := Parse(raw.Content, n.header)
	if err != nil {
		return nil, err
	}
	if scan.HeaderLines > 1 {
		logger.Warn("%s: %d header lines, using line %d", raw.URI, scan.HeaderLines, scan.Line)
	}
	logger.Debug("%s: %d metadata keys, %d rows", raw.URI, scan.Metadata.Len(), scan.Table.Len())

	records, err := Derive(scan.Table, scan.Metadata, n.derive)
	if err != nil {
		return nil, err
	}

	if IsSynthetic(records[0].Identifier) {
		logger.Warn("%s: no scan identifier, assigned %s", raw.URI, records[0].Identifier)
	}
	for _, rec := range records {
		if rec.NonFinite > 0 {
			logger.Warn("%s: %d non-finite %s values (%s policy)", raw.URI, rec.NonFinite, rec.Channel, n.derive.Policy)
		}
	}
	return records, nil
}

// Shape converts a channel record into the record store document.
func (n *Normaliser) Shape(rec *domain.ChannelRecord) (map[string]any, error) {
	return Shape(rec, n.shape)
}
