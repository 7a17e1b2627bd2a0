// Package domain defines the core entities for Lightway.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawScan: Opaque scan file bytes fetched by a source
//   - Metadata: Ordered string key-value pairs parsed from a scan header
//   - Table: Named float64 columns of equal length
//   - ChannelRecord: One derived absorption channel of a scan
//   - Record: A stored dataframe with metadata and spec tags
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
