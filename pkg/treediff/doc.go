// Package treediff compares two value trees (an expected one and an actual
// one) and reports every difference with a path to where it occurred.
//
// Trees are built from Values: Null, Bool, Number, String, Sequence,
// *Mapping and Opaque. Documents can be parsed with ParseJSON, which keeps
// object key order, and native Go trees can be converted with FromAny.
//
// Comparison is tolerant. Numbers match within an absolute or relative
// epsilon, numeric-looking strings are compared as numbers, and boolean
// literals compare ignoring case, all subject to a Policy:
//
//	policy, err := treediff.NewPolicy(treediff.WithLenientKeys())
//	if err != nil {
//	    return err
//	}
//	report, err := treediff.Compare(expected, actual, policy)
//	if err != nil {
//	    return err // invalid policy or malformed input
//	}
//	if !report.Match() {
//	    for _, m := range report.Mismatches() {
//	        fmt.Println(m)
//	    }
//	}
//
// A Report lists one Outcome per leaf and per composite-level discrepancy,
// matches included, in walk order. Mismatches never abort a comparison;
// only a *PolicyError or *StructuralError does.
package treediff
