package treediff

import (
	"fmt"
	"strings"
)

// StructuralError reports input that violates the value tree model:
// cycles, nesting beyond the depth limit, duplicate keys, or Go values
// that cannot be represented. It aborts the comparison.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Path == "" {
		return "structural error: " + e.Reason
	}
	return fmt.Sprintf("structural error at %s: %s", e.Path, e.Reason)
}

// CheckNesting returns a *StructuralError when a composite at path would
// nest deeper than MaxNestingDepth. Decoders call it before descending.
func CheckNesting(path Path) error {
	if path.Depth() >= MaxNestingDepth {
		return &StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("maximum depth %d exceeded", MaxNestingDepth),
		}
	}
	return nil
}

// PolicyError reports an invalid tolerance policy.
type PolicyError struct {
	Field   string
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("invalid policy: %s: %s", e.Field, e.Message)
}

// MismatchError lists every mismatch of a report.
type MismatchError struct {
	Mismatches []Outcome
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d mismatch(es)", len(e.Mismatches))
	for _, m := range e.Mismatches {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}
