// Package normalisers groups the beamline format readers. Each
// subpackage turns one scan file format into derived channel records.
package normalisers
