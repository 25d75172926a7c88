package treediff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Verdict is the result of a single comparison decision.
type Verdict int

const (
	Match Verdict = iota
	Mismatch
)

func (v Verdict) String() string {
	if v == Match {
		return "match"
	}
	return "mismatch"
}

// Outcome records one decision point of a comparison.
// Expected or Actual is nil when the value is absent on that side
// (a missing or unexpected key, or an unpaired sequence element).
type Outcome struct {
	Path     string
	Verdict  Verdict
	Expected Value
	Actual   Value
	Reason   string
}

// IsMismatch reports whether the outcome is a mismatch.
func (o Outcome) IsMismatch() bool {
	return o.Verdict == Mismatch
}

// String renders the outcome on one line.
func (o Outcome) String() string {
	if o.Verdict == Match {
		return fmt.Sprintf("%s: match", o.Path)
	}
	return fmt.Sprintf("%s: %s (expected=%s, actual=%s)", o.Path, o.Reason, render(o.Expected), render(o.Actual))
}

type outcomeJSON struct {
	Path     string          `json:"path"`
	Verdict  string          `json:"verdict"`
	Reason   string          `json:"reason,omitempty"`
	Expected json.RawMessage `json:"expected,omitempty"`
	Actual   json.RawMessage `json:"actual,omitempty"`
}

// MarshalJSON renders the outcome. Absent sides are omitted.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Path: o.Path, Verdict: o.Verdict.String(), Reason: o.Reason}
	if o.Expected != nil {
		b, err := MarshalValue(o.Expected)
		if err != nil {
			return nil, fmt.Errorf("%s: expected: %w", o.Path, err)
		}
		out.Expected = b
	}
	if o.Actual != nil {
		b, err := MarshalValue(o.Actual)
		if err != nil {
			return nil, fmt.Errorf("%s: actual: %w", o.Path, err)
		}
		out.Actual = b
	}
	return json.Marshal(out)
}

// Report is the ordered list of outcomes of one comparison. Matches are
// kept alongside mismatches so the report doubles as an audit log.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Match reports whether no mismatch was recorded.
func (r *Report) Match() bool {
	for _, o := range r.Outcomes {
		if o.Verdict == Mismatch {
			return false
		}
	}
	return true
}

// Mismatches returns the mismatch outcomes in report order.
func (r *Report) Mismatches() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Verdict == Mismatch {
			out = append(out, o)
		}
	}
	return out
}

// Counts returns the number of match and mismatch outcomes.
func (r *Report) Counts() (matches, mismatches int) {
	for _, o := range r.Outcomes {
		if o.Verdict == Mismatch {
			mismatches++
		} else {
			matches++
		}
	}
	return matches, mismatches
}

// Err returns a *MismatchError listing every mismatch, or nil when the
// comparison matched.
func (r *Report) Err() error {
	m := r.Mismatches()
	if len(m) == 0 {
		return nil
	}
	return &MismatchError{Mismatches: m}
}

// Format writes one line per outcome followed by a summary line.
func (r *Report) Format(w io.Writer) error {
	for _, o := range r.Outcomes {
		tag := "ok  "
		if o.Verdict == Mismatch {
			tag = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", tag, o); err != nil {
			return err
		}
	}
	matches, mismatches := r.Counts()
	_, err := fmt.Fprintf(w, "%d match(es), %d mismatch(es)\n", matches, mismatches)
	return err
}

func (r *Report) String() string {
	var buf bytes.Buffer
	_ = r.Format(&buf)
	return buf.String()
}

type reportJSON struct {
	Match      bool      `json:"match"`
	Matches    int       `json:"matches"`
	Mismatches int       `json:"mismatches"`
	Outcomes   []Outcome `json:"outcomes"`
}

// MarshalJSON renders the report with its derived summary fields.
func (r *Report) MarshalJSON() ([]byte, error) {
	matches, mismatches := r.Counts()
	outcomes := r.Outcomes
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	return json.Marshal(reportJSON{
		Match:      mismatches == 0,
		Matches:    matches,
		Mismatches: mismatches,
		Outcomes:   outcomes,
	})
}
