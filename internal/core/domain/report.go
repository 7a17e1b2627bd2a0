package domain

import (
	"errors"
	"sort"
)

// Stage names the pipeline step at which a scan or record failed.
type Stage string

// Pipeline stages.
const (
	StageRead       Stage = "read"
	StageNormalise  Stage = "normalise"
	StageValidate   Stage = "validate"
	StageShape      Stage = "shape"
	StageWrite      Stage = "write"
	StageOperator   Stage = "operator"
	StageCompatible Stage = "compatibility"
)

// Failure describes one scan file or record that did not make it to the store.
type Failure struct {
	// URI identifies the scan file or stored record.
	URI string

	// Channel is set when a single derived channel failed.
	Channel Channel

	// Stage is where processing stopped.
	Stage Stage

	// Err is the cause.
	Err error
}

// WrittenRecord links a derived channel to the record written for it.
type WrittenRecord struct {
	URI        string
	Channel    Channel
	Identifier string
	RecordID   string
}

// IngestReport summarises an ingest run.
type IngestReport struct {
	// Scanned is the number of scan files read.
	Scanned int

	// Written lists the records written, ordered by URI then channel.
	Written []WrittenRecord

	// Failures lists every file or channel that was skipped, ordered by URI.
	Failures []Failure
}

// FailedFiles returns the number of distinct URIs with at least one failure.
func (r *IngestReport) FailedFiles() int {
	seen := make(map[string]struct{})
	for _, f := range r.Failures {
		seen[f.URI] = struct{}{}
	}
	return len(seen)
}

// Err joins every failure cause, or returns nil when the run was clean.
func (r *IngestReport) Err() error {
	return joinFailures(r.Failures)
}

// Sort orders written records and failures deterministically by URI.
// Channel order within a URI follows derivation order.
func (r *IngestReport) Sort() {
	sort.SliceStable(r.Written, func(i, j int) bool {
		if r.Written[i].URI != r.Written[j].URI {
			return r.Written[i].URI < r.Written[j].URI
		}
		return channelIndex(r.Written[i].Channel) < channelIndex(r.Written[j].Channel)
	})
	sortFailures(r.Failures)
}

// PostprocessReport summarises a post-processing run.
type PostprocessReport struct {
	// Pipeline is the operator chain label, e.g. "StandardizeGrid->DataQualityLabel".
	Pipeline string

	// Processed is the number of records read.
	Processed int

	// Written maps parent record IDs to the IDs of the records written from them.
	Written map[string]string

	// Failures lists records that were not written, ordered by record ID.
	Failures []Failure
}

// Sort orders failures by record ID.
func (r *PostprocessReport) Sort() {
	sortFailures(r.Failures)
}

// Err joins every failure cause, or returns nil when the run was clean.
func (r *PostprocessReport) Err() error {
	return joinFailures(r.Failures)
}

func joinFailures(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

func sortFailures(failures []Failure) {
	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].URI != failures[j].URI {
			return failures[i].URI < failures[j].URI
		}
		return channelIndex(failures[i].Channel) < channelIndex(failures[j].Channel)
	})
}

func channelIndex(c Channel) int {
	for i, ch := range Channels() {
		if ch == c {
			return i
		}
	}
	return -1
}
