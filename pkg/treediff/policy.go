package treediff

import (
	"fmt"
	"math"
)

// ExtraKeys controls how mapping keys present only in the actual value are treated.
type ExtraKeys string

const (
	// ExtraKeysStrict reports every actual-only key as an "unexpected key" mismatch.
	ExtraKeysStrict ExtraKeys = "strict"
	// ExtraKeysLenient ignores actual-only keys (subset match).
	ExtraKeysLenient ExtraKeys = "lenient"
)

// ArrayOrder controls how sequence elements are paired.
type ArrayOrder string

const (
	// ArrayOrderStrict compares elements index by index.
	ArrayOrderStrict ArrayOrder = "strict"
	// ArrayOrderUnordered pairs each expected element with any equal actual element.
	ArrayOrderUnordered ArrayOrder = "unordered"
)

// Default policy values.
const (
	DefaultAbsoluteEpsilon = 1e-9
	DefaultRelativeEpsilon = 1e-9
	DefaultMaxDepth        = 2048
)

// MaxNestingDepth bounds every input decoder and converter in this package,
// and is the largest MaxDepth a policy may request.
const MaxNestingDepth = 10000

// Policy configures a comparison. It is passed by value and never
// modified while a comparison runs.
type Policy struct {
	// AbsoluteEpsilon is the absolute numeric tolerance. Differences strictly
	// below it match.
	AbsoluteEpsilon float64 `json:"absolute_epsilon"`

	// RelativeEpsilon is the tolerance relative to max(|expected|, |actual|).
	RelativeEpsilon float64 `json:"relative_epsilon"`

	// CaseInsensitiveBooleans lets "TRUE" and "False" coerce to booleans and
	// compares boolean literals ignoring case.
	CaseInsensitiveBooleans bool `json:"case_insensitive_booleans"`

	// CoerceStringNumerics classifies numeric-looking strings as numbers.
	CoerceStringNumerics bool `json:"coerce_string_numerics"`

	// NaNEqualsNaN treats two NaN values as equal. IEEE 754 says they are not.
	NaNEqualsNaN bool `json:"nan_equals_nan"`

	// ExtraKeys selects strict or lenient handling of actual-only keys.
	ExtraKeys ExtraKeys `json:"extra_keys"`

	// ArrayOrder selects strict or unordered sequence comparison.
	ArrayOrder ArrayOrder `json:"array_order"`

	// IgnoreKeys lists mapping keys skipped at any depth on both sides.
	IgnoreKeys []string `json:"ignore_keys,omitempty"`

	// NormalizeUnicode compares text after NFC normalization.
	NormalizeUnicode bool `json:"normalize_unicode"`

	// MaxDepth bounds nesting. Deeper input fails with a StructuralError.
	// Zero means DefaultMaxDepth.
	MaxDepth int `json:"max_depth"`
}

// DefaultPolicy returns the default comparison policy.
func DefaultPolicy() Policy {
	return Policy{
		AbsoluteEpsilon:         DefaultAbsoluteEpsilon,
		RelativeEpsilon:         DefaultRelativeEpsilon,
		CaseInsensitiveBooleans: true,
		CoerceStringNumerics:    true,
		NaNEqualsNaN:            false,
		ExtraKeys:               ExtraKeysStrict,
		ArrayOrder:              ArrayOrderStrict,
		MaxDepth:                DefaultMaxDepth,
	}
}

// Option modifies a policy under construction.
type Option func(*Policy)

// WithAbsoluteEpsilon sets the absolute tolerance.
func WithAbsoluteEpsilon(eps float64) Option {
	return func(p *Policy) { p.AbsoluteEpsilon = eps }
}

// WithRelativeEpsilon sets the relative tolerance.
func WithRelativeEpsilon(eps float64) Option {
	return func(p *Policy) { p.RelativeEpsilon = eps }
}

// WithCaseInsensitiveBooleans toggles case-insensitive boolean coercion.
func WithCaseInsensitiveBooleans(on bool) Option {
	return func(p *Policy) { p.CaseInsensitiveBooleans = on }
}

// WithCoerceStringNumerics toggles numeric coercion of strings.
func WithCoerceStringNumerics(on bool) Option {
	return func(p *Policy) { p.CoerceStringNumerics = on }
}

// WithNaNEqualsNaN toggles NaN equality.
func WithNaNEqualsNaN(on bool) Option {
	return func(p *Policy) { p.NaNEqualsNaN = on }
}

// WithExtraKeys sets actual-only key handling.
func WithExtraKeys(mode ExtraKeys) Option {
	return func(p *Policy) { p.ExtraKeys = mode }
}

// WithLenientKeys is shorthand for WithExtraKeys(ExtraKeysLenient).
func WithLenientKeys() Option {
	return WithExtraKeys(ExtraKeysLenient)
}

// WithArrayOrder sets sequence ordering.
func WithArrayOrder(order ArrayOrder) Option {
	return func(p *Policy) { p.ArrayOrder = order }
}

// WithIgnoreKeys adds keys skipped during mapping comparison.
func WithIgnoreKeys(keys ...string) Option {
	return func(p *Policy) { p.IgnoreKeys = append(p.IgnoreKeys, keys...) }
}

// WithNormalizeUnicode toggles NFC normalization of text.
func WithNormalizeUnicode(on bool) Option {
	return func(p *Policy) { p.NormalizeUnicode = on }
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(depth int) Option {
	return func(p *Policy) { p.MaxDepth = depth }
}

// NewPolicy builds a policy from the defaults and the given options and
// validates it.
func NewPolicy(opts ...Option) (Policy, error) {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy and returns a *PolicyError for the first
// invalid field. Empty enum values are accepted and mean the default.
func (p Policy) Validate() error {
	if err := validateEpsilon("absolute_epsilon", p.AbsoluteEpsilon); err != nil {
		return err
	}
	if err := validateEpsilon("relative_epsilon", p.RelativeEpsilon); err != nil {
		return err
	}
	switch p.ExtraKeys {
	case "", ExtraKeysStrict, ExtraKeysLenient:
	default:
		return &PolicyError{Field: "extra_keys", Message: `must be "strict" or "lenient", got "` + string(p.ExtraKeys) + `"`}
	}
	switch p.ArrayOrder {
	case "", ArrayOrderStrict, ArrayOrderUnordered:
	default:
		return &PolicyError{Field: "array_order", Message: `must be "strict" or "unordered", got "` + string(p.ArrayOrder) + `"`}
	}
	if p.MaxDepth < 0 {
		return &PolicyError{Field: "max_depth", Message: "must not be negative"}
	}
	if p.MaxDepth > MaxNestingDepth {
		return &PolicyError{Field: "max_depth", Message: fmt.Sprintf("must not exceed %d", MaxNestingDepth)}
	}
	for _, k := range p.IgnoreKeys {
		if k == "" {
			return &PolicyError{Field: "ignore_keys", Message: "must not contain empty keys"}
		}
	}
	return nil
}

func validateEpsilon(field string, eps float64) error {
	switch {
	case math.IsNaN(eps):
		return &PolicyError{Field: field, Message: "must not be NaN"}
	case math.IsInf(eps, 0):
		return &PolicyError{Field: field, Message: "must be finite"}
	case eps < 0:
		return &PolicyError{Field: field, Message: "must not be negative"}
	}
	return nil
}

func (p Policy) lenientKeys() bool {
	return p.ExtraKeys == ExtraKeysLenient
}

func (p Policy) unordered() bool {
	return p.ArrayOrder == ArrayOrderUnordered
}

func (p Policy) maxDepth() int {
	if p.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

func (p Policy) ignoreSet() map[string]bool {
	if len(p.IgnoreKeys) == 0 {
		return nil
	}
	set := make(map[string]bool, len(p.IgnoreKeys))
	for _, k := range p.IgnoreKeys {
		set[k] = true
	}
	return set
}
