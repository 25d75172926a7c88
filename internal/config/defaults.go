package config

import (
	"github.com/spf13/viper"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Default configuration values.
const (
	DefaultFixturesDirectory = "tests"
	DefaultFixturesPattern   = "*"
	DefaultOutputFormat      = "text"
	DefaultOutputColor       = "auto"
	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "text"
	DefaultServiceName       = "treediff"
	DefaultSampleRate        = 1.0
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	p := treediff.DefaultPolicy()
	cfg := &Config{
		Policy: PolicyConfig{
			AbsoluteEpsilon:         p.AbsoluteEpsilon,
			RelativeEpsilon:         p.RelativeEpsilon,
			CaseInsensitiveBooleans: p.CaseInsensitiveBooleans,
			CoerceStringNumerics:    p.CoerceStringNumerics,
			NaNEqualsNaN:            p.NaNEqualsNaN,
			MaxDepth:                p.MaxDepth,
		},
		Tracing: TracingConfig{SampleRate: DefaultSampleRate},
	}
	applyDefaults(cfg)
	return cfg
}

// setDefaults registers every key with viper. Keys viper does not know
// about are not picked up from the environment.
func setDefaults(v *viper.Viper) {
	p := treediff.DefaultPolicy()
	v.SetDefault("policy.absolute_epsilon", p.AbsoluteEpsilon)
	v.SetDefault("policy.relative_epsilon", p.RelativeEpsilon)
	v.SetDefault("policy.case_insensitive_booleans", p.CaseInsensitiveBooleans)
	v.SetDefault("policy.coerce_string_numerics", p.CoerceStringNumerics)
	v.SetDefault("policy.nan_equals_nan", p.NaNEqualsNaN)
	v.SetDefault("policy.extra_keys", string(p.ExtraKeys))
	v.SetDefault("policy.array_order", string(p.ArrayOrder))
	v.SetDefault("policy.normalize_unicode", p.NormalizeUnicode)
	v.SetDefault("policy.max_depth", p.MaxDepth)

	v.SetDefault("fixtures.directory", DefaultFixturesDirectory)
	v.SetDefault("fixtures.pattern", DefaultFixturesPattern)
	v.SetDefault("fixtures.workers", 0)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.color", DefaultOutputColor)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.service_name", DefaultServiceName)
	v.SetDefault("tracing.sample_rate", DefaultSampleRate)

	// A nil default would be dropped from the settings map.
	_ = v.BindEnv("policy.ignore_keys")
}

// applyDefaults fills in default values for fields set to empty strings.
func applyDefaults(cfg *Config) {
	applyPolicyDefaults(cfg)
	applyFixturesDefaults(cfg)
	applyOutputDefaults(cfg)
	applyLogDefaults(cfg)
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultServiceName
	}
}

func applyPolicyDefaults(cfg *Config) {
	if cfg.Policy.ExtraKeys == "" {
		cfg.Policy.ExtraKeys = string(treediff.ExtraKeysStrict)
	}
	if cfg.Policy.ArrayOrder == "" {
		cfg.Policy.ArrayOrder = string(treediff.ArrayOrderStrict)
	}
	if cfg.Policy.MaxDepth == 0 {
		cfg.Policy.MaxDepth = treediff.DefaultMaxDepth
	}
}

func applyFixturesDefaults(cfg *Config) {
	if cfg.Fixtures.Directory == "" {
		cfg.Fixtures.Directory = DefaultFixturesDirectory
	}
	if cfg.Fixtures.Pattern == "" {
		cfg.Fixtures.Pattern = DefaultFixturesPattern
	}
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = DefaultOutputColor
	}
}

func applyLogDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
