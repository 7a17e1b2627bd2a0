package domain

// RawScan represents opaque scan file bytes fetched by a source.
// It is the source's output before parsing.
type RawScan struct {
	// URI is the original location (file path or source identifier).
	URI string

	// Format is the file extension or format tag (e.g., ".dat").
	Format string

	// Content is the raw bytes.
	Content []byte
}

// Raw column names required in every ISS scan.
const (
	ColumnEnergy = "energy"
	ColumnI0     = "i0"
	ColumnIt     = "it"
	ColumnIr     = "ir"
	ColumnIff    = "iff"

	// ColumnMu is the canonical absorption coefficient column.
	ColumnMu = "mu"
)

// RequiredRawColumns lists the raw columns every scan must provide.
func RequiredRawColumns() []string {
	return []string{ColumnEnergy, ColumnI0, ColumnIt, ColumnIr, ColumnIff}
}

// Metadata keys set by derivation.
const (
	// ChannelKey names the derived measurement channel.
	ChannelKey = "channel"

	// IdentifierKey holds the scan identifier shared by all channels of a file.
	IdentifierKey = "Scan-uid"

	// SyntheticIdentifierPrefix marks identifiers generated at ingest time.
	SyntheticIdentifierPrefix = "assigned-"
)

// Channel is one of the derived measurement interpretations.
type Channel string

// Available channels, in derivation order.
const (
	ChannelTransmission Channel = "transmission"
	ChannelFluorescence Channel = "fluorescence"
	ChannelReference    Channel = "reference"
)

// Channels returns all channels in derivation order.
func Channels() []Channel {
	return []Channel{ChannelTransmission, ChannelFluorescence, ChannelReference}
}

// IsValid returns true if the channel is recognised.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelTransmission, ChannelFluorescence, ChannelReference:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Channel) String() string {
	return string(c)
}

// ChannelRecord is one derived channel of a scan: an (energy, mu) table
// and the scan metadata tagged with the channel and identifier.
type ChannelRecord struct {
	// Channel is the measurement interpretation.
	Channel Channel

	// Identifier is the scan identifier, shared by all channels of a file.
	Identifier string

	// Data holds the energy and mu columns.
	Data *Table

	// Metadata is the raw scan metadata plus channel and identifier keys.
	Metadata Metadata

	// NonFinite counts rows whose derived mu was not finite before the
	// numeric policy was applied.
	NonFinite int
}
