package testhelper

import (
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// TB is the subset of testing.TB used by the assertions.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

// DefaultOptions returns the policy used when no options are given.
func DefaultOptions() treediff.Policy {
	return treediff.DefaultPolicy()
}

// Diff compares expected and actual native Go values and returns the
// mismatch lines, or nil when they match. Errors are returned as a single
// line so callers always get something printable.
func Diff(expected, actual any, opts ...treediff.Option) []string {
	policy, err := treediff.NewPolicy(opts...)
	if err != nil {
		return []string{err.Error()}
	}
	report, err := treediff.CompareAny(expected, actual, policy)
	if err != nil {
		return []string{err.Error()}
	}
	var lines []string
	for _, m := range report.Mismatches() {
		lines = append(lines, m.String())
	}
	return lines
}

// AssertMatch reports every mismatch between expected and actual as a test
// error and returns whether they matched. The test continues either way.
func AssertMatch(t TB, expected, actual any, opts ...treediff.Option) bool {
	t.Helper()
	lines := Diff(expected, actual, opts...)
	for _, line := range lines {
		t.Errorf("%s", line)
	}
	return len(lines) == 0
}

// RequireMatch is like AssertMatch but stops the test on mismatch.
func RequireMatch(t TB, expected, actual any, opts ...treediff.Option) {
	t.Helper()
	if !AssertMatch(t, expected, actual, opts...) {
		t.FailNow()
	}
}

// AssertCase compares actual against the expected tree of a loaded case,
// using the case's own policy overrides on top of opts.
func AssertCase(t TB, tc *TestCase, actual any, opts ...treediff.Option) bool {
	t.Helper()
	policy, err := treediff.NewPolicy(append(opts, tc.Options...)...)
	if err != nil {
		t.Errorf("%s: %v", tc.Name, err)
		return false
	}
	a, err := treediff.FromAny(actual)
	if err != nil {
		t.Errorf("%s: actual: %v", tc.Name, err)
		return false
	}
	report, err := treediff.Compare(tc.Expected, a, policy)
	if err != nil {
		t.Errorf("%s: %v", tc.Name, err)
		return false
	}
	for _, m := range report.Mismatches() {
		t.Errorf("%s: %s", tc.Name, m)
	}
	return report.Match()
}
