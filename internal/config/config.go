package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/AndreyAkinshin/treediff/internal/schema"
)

// EnvPrefix prefixes environment overrides, e.g. TREEDIFF_POLICY_ABSOLUTE_EPSILON.
const EnvPrefix = "TREEDIFF"

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path (JSON, YAML or TOML, chosen by
// extension), applies environment overrides and defaults, and validates the
// result. An empty path loads defaults and environment overrides only.
// Unknown fields and questionable values are returned as warnings.
func Load(path string) (*Config, []string, error) {
	v := newViper()

	var warnings []string
	if path != "" {
		settings, err := readSettings(path)
		if err != nil {
			return nil, nil, err
		}
		if err := schema.ValidateConfigDocument(settings); err != nil {
			return nil, nil, &ValidationError{Field: path, Message: err.Error()}
		}
		warnings = detectUnknownFields(settings)
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	validationWarnings, err := Validate(&cfg)
	warnings = append(warnings, validationWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	return &cfg, warnings, nil
}

// readSettings reads only the file, without defaults or environment, so
// the schema check and unknown field detection see what the user wrote.
func readSettings(path string) (map[string]any, error) {
	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return file.AllSettings(), nil
}
