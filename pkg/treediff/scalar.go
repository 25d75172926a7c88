package treediff

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CompareScalars compares two scalar values at path and returns a single outcome.
//
// Decision order: both null match; exactly one null is a "null mismatch";
// two numerics use tolerant numeric equality; two booleans compare their
// literal forms; two texts compare exactly; two opaque values compare deeply;
// anything else is a "type mismatch".
func CompareScalars(expected, actual Value, path Path, policy Policy) Outcome {
	ec := policy.Classify(expected)
	ac := policy.Classify(actual)

	match := Outcome{Path: path.String(), Verdict: Match, Expected: expected, Actual: actual}
	mismatch := func(reason string) Outcome {
		return Outcome{Path: path.String(), Verdict: Mismatch, Expected: expected, Actual: actual, Reason: reason}
	}

	switch {
	case ec == CategoryNull && ac == CategoryNull:
		return match
	case ec == CategoryNull || ac == CategoryNull:
		return mismatch(ReasonNullMismatch)
	case ec == CategoryNumeric && ac == CategoryNumeric:
		e, eok := numericValue(expected)
		a, aok := numericValue(actual)
		if !eok || !aok {
			return mismatch("numeric mismatch: unparsable number")
		}
		if ok, reason := numbersEqual(e, a, policy); !ok {
			return mismatch(reason)
		}
		return match
	case ec == CategoryBoolean && ac == CategoryBoolean:
		e, a := booleanLiteral(expected), booleanLiteral(actual)
		if e == a || (policy.CaseInsensitiveBooleans && strings.EqualFold(e, a)) {
			return match
		}
		return mismatch("boolean mismatch")
	case ec == CategoryText && ac == CategoryText:
		e, a := string(expected.(String)), string(actual.(String))
		if policy.NormalizeUnicode {
			e, a = norm.NFC.String(e), norm.NFC.String(a)
		}
		if e == a {
			return match
		}
		return mismatch("text mismatch")
	case ec == CategoryOpaque && ac == CategoryOpaque:
		if reflect.DeepEqual(expected, actual) {
			return match
		}
		return mismatch("opaque mismatch")
	default:
		return mismatch(typeMismatchReason(ec, ac))
	}
}

func typeMismatchReason(expected, actual Category) string {
	return fmt.Sprintf("type mismatch: expected %s, actual %s", expected, actual)
}

// numbersEqual applies exact, absolute, then relative tolerance.
func numbersEqual(e, a float64, policy Policy) (bool, string) {
	if e == a {
		return true, ""
	}
	if math.IsNaN(e) || math.IsNaN(a) {
		if math.IsNaN(e) && math.IsNaN(a) {
			if policy.NaNEqualsNaN {
				return true, ""
			}
			return false, "numeric mismatch: NaN is not equal to NaN (set nan_equals_nan to allow)"
		}
		return false, "numeric mismatch: NaN compared with a number"
	}
	diff := math.Abs(e - a)
	if diff < policy.AbsoluteEpsilon {
		return true, ""
	}
	// Infinite magnitudes make the ratio NaN or Inf, which never passes.
	rel := diff / math.Max(math.Abs(e), math.Abs(a))
	if rel < policy.RelativeEpsilon {
		return true, ""
	}
	return false, fmt.Sprintf("numeric mismatch: difference %s", formatFloat(diff))
}

// numericValue converts a numeric-category value to float64.
func numericValue(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return val.Float, true
	case String:
		n, err := NewNumberLiteral(string(val))
		if err != nil {
			return 0, false
		}
		return n.Float, true
	}
	return 0, false
}

// booleanLiteral returns the literal text form of a boolean-category value.
func booleanLiteral(v Value) string {
	switch val := v.(type) {
	case Bool:
		return strconv.FormatBool(bool(val))
	case String:
		return string(val)
	}
	return ""
}
