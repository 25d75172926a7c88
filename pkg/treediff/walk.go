package treediff

import (
	"fmt"
	"reflect"
)

// Fixed mismatch reasons. Type and numeric mismatches carry details and
// are built at the point of comparison.
const (
	ReasonNullMismatch      = "null mismatch"
	ReasonMissingKey        = "missing key"
	ReasonUnexpectedKey     = "unexpected key"
	ReasonLengthMismatch    = "length mismatch"
	ReasonNoMatchingElement = "no matching element"
)

// Compare walks expected and actual in lock-step and returns a report with
// an outcome for every leaf and for every composite-level discrepancy.
//
// Mismatches never stop the walk. Compare returns an error only for an
// invalid policy (*PolicyError) or malformed input (*StructuralError), and
// in that case returns no report.
func Compare(expected, actual Value, policy Policy) (*Report, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	w := newWalker(policy)
	if err := w.walk(expected, actual, Root()); err != nil {
		return nil, err
	}
	return w.report, nil
}

// CompareAny converts native Go trees with FromAny and compares them.
func CompareAny(expected, actual any, policy Policy) (*Report, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	e, err := FromAny(expected)
	if err != nil {
		return nil, fmt.Errorf("expected: %w", err)
	}
	a, err := FromAny(actual)
	if err != nil {
		return nil, fmt.Errorf("actual: %w", err)
	}
	return Compare(e, a, policy)
}

// Equal reports whether expected and actual match under policy.
// Any error (invalid policy or malformed input) counts as not equal.
func Equal(expected, actual any, policy Policy) bool {
	r, err := CompareAny(expected, actual, policy)
	return err == nil && r.Match()
}

// identity keys a composite on the active recursion stack.
type identity struct {
	ptr  uintptr
	len  int
	kind Kind
}

type walker struct {
	policy   Policy
	ignore   map[string]bool
	maxDepth int
	report   *Report

	// Composites currently being walked, per side. Re-entering one means
	// the input is cyclic.
	activeExpected map[identity]bool
	activeActual   map[identity]bool
}

func newWalker(policy Policy) *walker {
	return &walker{
		policy:         policy,
		ignore:         policy.ignoreSet(),
		maxDepth:       policy.maxDepth(),
		report:         &Report{},
		activeExpected: make(map[identity]bool),
		activeActual:   make(map[identity]bool),
	}
}

func (w *walker) walk(expected, actual Value, path Path) error {
	ec := w.policy.Classify(expected)
	ac := w.policy.Classify(actual)

	if !ec.IsComposite() && !ac.IsComposite() {
		w.report.add(CompareScalars(expected, actual, path, w.policy))
		return nil
	}
	if ec != ac {
		w.report.add(Outcome{
			Path:     path.String(),
			Verdict:  Mismatch,
			Expected: expected,
			Actual:   actual,
			Reason:   typeMismatchReason(ec, ac),
		})
		return nil
	}

	if path.Depth() >= w.maxDepth {
		return &StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("maximum depth %d exceeded", w.maxDepth),
		}
	}
	leave, err := w.enter(expected, actual, path)
	if err != nil {
		return err
	}
	defer leave()

	if ec == CategoryMapping {
		return w.walkMapping(expected.(*Mapping), actual.(*Mapping), path)
	}
	return w.walkSequence(expected.(Sequence), actual.(Sequence), path)
}

// enter marks both composites active and returns the function that unmarks them.
func (w *walker) enter(expected, actual Value, path Path) (func(), error) {
	eid, eok := identityOf(expected)
	aid, aok := identityOf(actual)
	if eok && w.activeExpected[eid] {
		return nil, &StructuralError{Path: path.String(), Reason: "cyclic reference in expected value"}
	}
	if aok && w.activeActual[aid] {
		return nil, &StructuralError{Path: path.String(), Reason: "cyclic reference in actual value"}
	}
	if eok {
		w.activeExpected[eid] = true
	}
	if aok {
		w.activeActual[aid] = true
	}
	return func() {
		if eok {
			delete(w.activeExpected, eid)
		}
		if aok {
			delete(w.activeActual, aid)
		}
	}, nil
}

// identityOf returns the identity of a non-empty composite.
// Empty composites cannot contain themselves.
func identityOf(v Value) (identity, bool) {
	switch val := v.(type) {
	case *Mapping:
		if val.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: reflect.ValueOf(val).Pointer(), kind: KindMapping}, true
	case Sequence:
		if len(val) == 0 {
			return identity{}, false
		}
		return identity{ptr: reflect.ValueOf(val).Pointer(), len: len(val), kind: KindSequence}, true
	}
	return identity{}, false
}

func (w *walker) walkMapping(expected, actual *Mapping, path Path) error {
	if expected.Len() == 0 && actual.Len() == 0 {
		w.report.add(Outcome{Path: path.String(), Verdict: Match, Expected: expected, Actual: actual})
		return nil
	}

	for _, key := range expected.Keys() {
		if w.ignore[key] {
			continue
		}
		ev, _ := expected.Get(key)
		child := path.Key(key)
		av, ok := actual.Get(key)
		if !ok {
			w.report.add(Outcome{Path: child.String(), Verdict: Mismatch, Expected: ev, Reason: ReasonMissingKey})
			continue
		}
		if err := w.walk(ev, av, child); err != nil {
			return err
		}
	}

	if w.policy.lenientKeys() {
		return nil
	}
	for _, key := range actual.Keys() {
		if w.ignore[key] || expected.Has(key) {
			continue
		}
		av, _ := actual.Get(key)
		w.report.add(Outcome{Path: path.Key(key).String(), Verdict: Mismatch, Actual: av, Reason: ReasonUnexpectedKey})
	}
	return nil
}

func (w *walker) walkSequence(expected, actual Sequence, path Path) error {
	if len(expected) == 0 && len(actual) == 0 {
		w.report.add(Outcome{Path: path.String(), Verdict: Match, Expected: expected, Actual: actual})
		return nil
	}
	if len(expected) != len(actual) {
		w.report.add(Outcome{
			Path:     path.String(),
			Verdict:  Mismatch,
			Expected: NewInt(int64(len(expected))),
			Actual:   NewInt(int64(len(actual))),
			Reason:   ReasonLengthMismatch,
		})
	}

	if w.policy.unordered() {
		return w.walkUnordered(expected, actual, path)
	}

	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if err := w.walk(expected[i], actual[i], path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// walkUnordered pairs every expected element with the first unused actual
// element that matches it completely. Elements left unpaired are then
// compared in order against the remaining actual elements so their
// differences are still reported; expected elements with no actual left
// are reported as "no matching element". Paths use expected indexes.
// Surplus actual elements are covered by the length mismatch.
func (w *walker) walkUnordered(expected, actual Sequence, path Path) error {
	used := make([]bool, len(actual))
	var unpaired []int

	for i, ev := range expected {
		found := false
		for j, av := range actual {
			if used[j] {
				continue
			}
			trial, err := w.trial(ev, av, path.Index(i))
			if err != nil {
				return err
			}
			if trial.Match() {
				used[j] = true
				found = true
				w.report.Outcomes = append(w.report.Outcomes, trial.Outcomes...)
				break
			}
		}
		if !found {
			unpaired = append(unpaired, i)
		}
	}

	j := 0
	for _, i := range unpaired {
		for j < len(actual) && used[j] {
			j++
		}
		if j == len(actual) {
			w.report.add(Outcome{
				Path:     path.Index(i).String(),
				Verdict:  Mismatch,
				Expected: expected[i],
				Reason:   ReasonNoMatchingElement,
			})
			continue
		}
		used[j] = true
		if err := w.walk(expected[i], actual[j], path.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// trial runs a comparison into a scratch report. The active sets are shared
// so cycles are still detected across trials.
func (w *walker) trial(expected, actual Value, path Path) (*Report, error) {
	saved := w.report
	w.report = &Report{}
	err := w.walk(expected, actual, path)
	r := w.report
	w.report = saved
	return r, err
}
