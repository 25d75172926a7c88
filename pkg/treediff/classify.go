package treediff

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the comparison category of a value.
type Category int

const (
	CategoryNull Category = iota
	CategoryNumeric
	CategoryBoolean
	CategoryText
	CategorySequence
	CategoryMapping
	CategoryOpaque
)

var categoryNames = [...]string{
	CategoryNull:     "null",
	CategoryNumeric:  "numeric",
	CategoryBoolean:  "boolean",
	CategoryText:     "text",
	CategorySequence: "sequence",
	CategoryMapping:  "mapping",
	CategoryOpaque:   "opaque",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// IsComposite reports whether values of this category have children.
func (c Category) IsComposite() bool {
	return c == CategorySequence || c == CategoryMapping
}

// Numeric literal grammar for string coercion: an optional leading minus,
// then digits, or digits with a single decimal point followed by digits.
// Exponents, leading plus signs and thousands separators are not numeric.
var (
	integerLiteral = regexp.MustCompile(`^-?[0-9]+$`)
	decimalLiteral = regexp.MustCompile(`^-?[0-9]*\.[0-9]+$`)
)

// IsNumericLiteral reports whether s is text that coerces to a number.
func IsNumericLiteral(s string) bool {
	return integerLiteral.MatchString(s) || decimalLiteral.MatchString(s)
}

// IsBooleanLiteral reports whether s is text that coerces to a boolean.
func IsBooleanLiteral(s string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
	}
	return s == "true" || s == "false"
}

// Classify returns the category of v under the default policy.
func Classify(v Value) Category {
	return DefaultPolicy().Classify(v)
}

// Classify returns the category of v. Rules apply in priority order:
// null, tagged number, tagged boolean, numeric text, boolean text, text,
// sequence, mapping, and anything else is opaque.
func (p Policy) Classify(v Value) Category {
	switch val := v.(type) {
	case nil, Null:
		return CategoryNull
	case Number:
		return CategoryNumeric
	case Bool:
		return CategoryBoolean
	case String:
		s := string(val)
		if p.CoerceStringNumerics && IsNumericLiteral(s) {
			return CategoryNumeric
		}
		if IsBooleanLiteral(s, p.CaseInsensitiveBooleans) {
			return CategoryBoolean
		}
		return CategoryText
	case Sequence:
		return CategorySequence
	case *Mapping:
		if val == nil {
			return CategoryNull
		}
		return CategoryMapping
	default:
		return CategoryOpaque
	}
}
