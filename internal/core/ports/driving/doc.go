// Package driving declares what the CLI may ask of the core: ingest a
// directory tree, run a post-processing pipeline, and inspect or label
// stored records.
package driving
