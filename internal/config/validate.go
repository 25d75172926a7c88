package config

import (
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	outputFormats = []string{"text", "json"}
	colorModes    = []string{"auto", "always", "never"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
)

// Validate checks a configuration for errors and returns warnings for
// settings that are valid but probably unintended.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validatePolicy(cfg.Policy); err != nil {
		return nil, err
	}
	if cfg.Fixtures.Workers < 0 {
		return nil, &ValidationError{Field: "fixtures.workers", Message: "must not be negative"}
	}
	if err := validateEnum("output.format", cfg.Output.Format, outputFormats); err != nil {
		return nil, err
	}
	if err := validateEnum("output.color", cfg.Output.Color, colorModes); err != nil {
		return nil, err
	}
	if err := validateEnum("log.level", cfg.Log.Level, logLevels); err != nil {
		return nil, err
	}
	if err := validateEnum("log.format", cfg.Log.Format, logFormats); err != nil {
		return nil, err
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return nil, &ValidationError{Field: "tracing.sample_rate", Message: "must be between 0 and 1"}
	}

	if cfg.Policy.AbsoluteEpsilon == 0 && cfg.Policy.RelativeEpsilon == 0 {
		warnings = append(warnings, "policy.absolute_epsilon and policy.relative_epsilon are both 0; numbers must match exactly")
	}
	if cfg.Tracing.OTLPEndpoint != "" && cfg.Tracing.SampleRate == 0 {
		warnings = append(warnings, "tracing.sample_rate is 0; no spans will be exported")
	}

	return warnings, nil
}

func validatePolicy(p PolicyConfig) error {
	_, err := p.Policy()
	var pe *treediff.PolicyError
	if errors.As(err, &pe) {
		return &ValidationError{Field: "policy." + pe.Field, Message: pe.Message}
	}
	return err
}

func validateEnum(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of %q, got %q", allowed, value),
	}
}
