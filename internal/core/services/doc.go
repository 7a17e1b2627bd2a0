// Package services wires connectors, normalisers, validators and
// post-processing operators into the ingest and post-processing drivers.
package services
