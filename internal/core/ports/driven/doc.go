// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ScanSource / ScanSourceFactory: Yield raw scan files
//   - Normaliser / NormaliserRegistry: Parse and derive channel records
//   - RecordValidator: Structural and schema checks before write
//   - RecordStore: Metadata-indexed dataframe persistence
//   - OperatorPipeline: Post-processing operator chains
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - ScanFetcher: Fetch scans by identifier from a live scan database
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
