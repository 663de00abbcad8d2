package pipeline

import (
	"time"

	"github.com/gaurav-prasanna/hexovault/core"
)

// Status is what happened to one source.
type Status int

const (
	StatusWritten Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of processing one source.
type Outcome struct {
	Source core.Source
	// Path is the note file. Empty when writing to stdout.
	Path   string
	Title  string
	Status Status
	Err    error
}

// Stats aggregates a batch.
type Stats struct {
	Discovered int
	Written    int
	Skipped    int
	Failed     int
	Elapsed    time.Duration
}

func (s *Stats) add(status Status) {
	switch status {
	case StatusWritten:
		s.Written++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Result holds every outcome of a batch in source order.
type Result struct {
	Outcomes []Outcome
	Stats    Stats
}

// Failures returns the failed outcomes.
func (r *Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}
