// Package connectors provides the scan sources raw beamline files are read
// from. Each source knows how to enumerate scans from one place (a
// directory tree, an in-process scan database).
//
// Sources are created by the Factory from a domain.SourceConfig.
package connectors
