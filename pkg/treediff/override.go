package treediff

// PolicyOverride is a partial Policy, as written in a fixture case's
// "policy" object. Nil fields keep the base value; a non-nil IgnoreKeys
// replaces the base list.
type PolicyOverride struct {
	AbsoluteEpsilon         *float64    `json:"absolute_epsilon,omitempty"`
	RelativeEpsilon         *float64    `json:"relative_epsilon,omitempty"`
	CaseInsensitiveBooleans *bool       `json:"case_insensitive_booleans,omitempty"`
	CoerceStringNumerics    *bool       `json:"coerce_string_numerics,omitempty"`
	NaNEqualsNaN            *bool       `json:"nan_equals_nan,omitempty"`
	ExtraKeys               *ExtraKeys  `json:"extra_keys,omitempty"`
	ArrayOrder              *ArrayOrder `json:"array_order,omitempty"`
	IgnoreKeys              []string    `json:"ignore_keys,omitempty"`
	NormalizeUnicode        *bool       `json:"normalize_unicode,omitempty"`
	MaxDepth                *int        `json:"max_depth,omitempty"`
}

// Options returns one Option per set field. A nil override yields none.
func (o *PolicyOverride) Options() []Option {
	if o == nil {
		return nil
	}
	var opts []Option
	if o.AbsoluteEpsilon != nil {
		opts = append(opts, WithAbsoluteEpsilon(*o.AbsoluteEpsilon))
	}
	if o.RelativeEpsilon != nil {
		opts = append(opts, WithRelativeEpsilon(*o.RelativeEpsilon))
	}
	if o.CaseInsensitiveBooleans != nil {
		opts = append(opts, WithCaseInsensitiveBooleans(*o.CaseInsensitiveBooleans))
	}
	if o.CoerceStringNumerics != nil {
		opts = append(opts, WithCoerceStringNumerics(*o.CoerceStringNumerics))
	}
	if o.NaNEqualsNaN != nil {
		opts = append(opts, WithNaNEqualsNaN(*o.NaNEqualsNaN))
	}
	if o.ExtraKeys != nil {
		opts = append(opts, WithExtraKeys(*o.ExtraKeys))
	}
	if o.ArrayOrder != nil {
		opts = append(opts, WithArrayOrder(*o.ArrayOrder))
	}
	if o.IgnoreKeys != nil {
		keys := append([]string(nil), o.IgnoreKeys...)
		opts = append(opts, func(p *Policy) { p.IgnoreKeys = keys })
	}
	if o.NormalizeUnicode != nil {
		opts = append(opts, WithNormalizeUnicode(*o.NormalizeUnicode))
	}
	if o.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*o.MaxDepth))
	}
	return opts
}

// With returns a copy of p with opts applied. The receiver is not modified.
func (p Policy) With(opts ...Option) Policy {
	p.IgnoreKeys = append([]string(nil), p.IgnoreKeys...)
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
