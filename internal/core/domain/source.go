package domain

// Source types understood by the scan source factory.
const (
	SourceTypeFilesystem = "filesystem"
	SourceTypeMemory     = "memory"
)

// DefaultScanExtension is the file extension of ISS scan files.
const DefaultScanExtension = ".dat"

// DefaultScanFormat is the format tag of ISS scans. Tree walks stamp it on
// every matched file whatever the extension.
const DefaultScanFormat = DefaultScanExtension

// SourceConfig describes where raw scans come from.
type SourceConfig struct {
	// Type selects the source implementation (e.g., "filesystem").
	Type string

	// Root is the directory walked by filesystem sources.
	Root string

	// Extension filters file names; empty means DefaultScanExtension.
	Extension string

	// Format tags every yielded scan for normaliser lookup; empty means
	// the matched extension.
	Format string
}
