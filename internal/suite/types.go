// Package suite runs fixture cases through the comparison engine with a
// bounded worker pool.
package suite

import (
	"time"

	"github.com/AndreyAkinshin/treediff/internal/fixture"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Status is the outcome of a single case.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CaseResult represents the result of running a case.
type CaseResult struct {
	Case     *fixture.Case
	Status   Status
	Report   *treediff.Report // nil for skipped and errored cases
	Err      error
	Duration time.Duration
}

// Mismatches returns the number of mismatches in the report.
func (r *CaseResult) Mismatches() int {
	if r.Report == nil {
		return 0
	}
	_, n := r.Report.Counts()
	return n
}

// Result represents the results of an entire suite.
type Result struct {
	RunID    string
	Suite    string
	Results  []CaseResult
	Passed   int
	Failed   int
	Skipped  int
	Errored  int
	Duration time.Duration
}

// OK reports whether no case failed or errored.
func (r *Result) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Total returns the number of cases.
func (r *Result) Total() int {
	return len(r.Results)
}

func (r *Result) count() {
	r.Passed, r.Failed, r.Skipped, r.Errored = 0, 0, 0, 0
	for _, cr := range r.Results {
		switch cr.Status {
		case StatusPassed:
			r.Passed++
		case StatusFailed:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		case StatusError:
			r.Errored++
		}
	}
}
