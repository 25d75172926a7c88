// Package config provides loading and validation of the .treediff
// project configuration.
package config

import (
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Config represents the complete project configuration.
type Config struct {
	Policy   PolicyConfig   `mapstructure:"policy" json:"policy" yaml:"policy"`
	Fixtures FixturesConfig `mapstructure:"fixtures" json:"fixtures" yaml:"fixtures"`
	Output   OutputConfig   `mapstructure:"output" json:"output" yaml:"output"`
	Log      LogConfig      `mapstructure:"log" json:"log" yaml:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// PolicyConfig is the default tolerance policy for every comparison.
type PolicyConfig struct {
	AbsoluteEpsilon         float64  `mapstructure:"absolute_epsilon" json:"absolute_epsilon" yaml:"absolute_epsilon"`
	RelativeEpsilon         float64  `mapstructure:"relative_epsilon" json:"relative_epsilon" yaml:"relative_epsilon"`
	CaseInsensitiveBooleans bool     `mapstructure:"case_insensitive_booleans" json:"case_insensitive_booleans" yaml:"case_insensitive_booleans"`
	CoerceStringNumerics    bool     `mapstructure:"coerce_string_numerics" json:"coerce_string_numerics" yaml:"coerce_string_numerics"`
	NaNEqualsNaN            bool     `mapstructure:"nan_equals_nan" json:"nan_equals_nan" yaml:"nan_equals_nan"`
	ExtraKeys               string   `mapstructure:"extra_keys" json:"extra_keys" yaml:"extra_keys"`
	ArrayOrder              string   `mapstructure:"array_order" json:"array_order" yaml:"array_order"`
	IgnoreKeys              []string `mapstructure:"ignore_keys" json:"ignore_keys,omitempty" yaml:"ignore_keys,omitempty"`
	NormalizeUnicode        bool     `mapstructure:"normalize_unicode" json:"normalize_unicode" yaml:"normalize_unicode"`
	MaxDepth                int      `mapstructure:"max_depth" json:"max_depth" yaml:"max_depth"`
}

// FixturesConfig locates fixture suites.
type FixturesConfig struct {
	// Directory holds one subdirectory per suite, relative to the project root.
	Directory string `mapstructure:"directory" json:"directory" yaml:"directory"`
	// Pattern is a glob matched against case file names.
	Pattern string `mapstructure:"pattern" json:"pattern" yaml:"pattern"`
	// Workers bounds concurrent cases. Zero means one per CPU.
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `mapstructure:"format" json:"format" yaml:"format"` // text or json
	Color  string `mapstructure:"color" json:"color" yaml:"color"`    // auto, always or never
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// TracingConfig controls OpenTelemetry export. Tracing is disabled when
// OTLPEndpoint is empty.
type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" json:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate"`
}

// Policy converts the configuration into a validated comparison policy.
func (p PolicyConfig) Policy() (treediff.Policy, error) {
	policy := treediff.Policy{
		AbsoluteEpsilon:         p.AbsoluteEpsilon,
		RelativeEpsilon:         p.RelativeEpsilon,
		CaseInsensitiveBooleans: p.CaseInsensitiveBooleans,
		CoerceStringNumerics:    p.CoerceStringNumerics,
		NaNEqualsNaN:            p.NaNEqualsNaN,
		ExtraKeys:               treediff.ExtraKeys(p.ExtraKeys),
		ArrayOrder:              treediff.ArrayOrder(p.ArrayOrder),
		IgnoreKeys:              append([]string(nil), p.IgnoreKeys...),
		NormalizeUnicode:        p.NormalizeUnicode,
		MaxDepth:                p.MaxDepth,
	}
	if err := policy.Validate(); err != nil {
		return treediff.Policy{}, err
	}
	return policy, nil
}
