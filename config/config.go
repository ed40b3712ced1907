// Package config loads the declarative runtime configuration: which
// execution environments exist, which engine backs each one, and how the
// runtime logs. Engines themselves are code, so the document names a builder
// and the caller supplies the builder functions when the configuration is
// applied.
package config

import (
	"fmt"
	"os"

	"datamapper/engine"
	apperrors "datamapper/pkg/errors"
	"datamapper/registry"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the full runtime configuration
type Config struct {
	Environments []EnvironmentConfig `yaml:"environments" validate:"required,min=1,dive"`
	Logging      LoggingConfig       `yaml:"logging"`
}

// EnvironmentConfig declares one execution environment
type EnvironmentConfig struct {
	// ID is the environment identifier used in mapper resolution.
	ID string `yaml:"id" validate:"required"`

	// Engine names the builder that constructs the execution engine.
	Engine string `yaml:"engine" validate:"required"`

	// Mode is the default execution mode; empty means immediate.
	Mode string `yaml:"mode" validate:"omitempty,oneof=immediate batched"`

	// Default marks this environment as the default one. It is registered
	// under its own identifier and under the sentinel default identifier.
	Default bool `yaml:"default"`

	// Settings are opaque engine parameters passed to the builder.
	Settings map[string]string `yaml:"settings"`
}

// LoggingConfig controls the runtime logger
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// EngineBuilder constructs an execution engine from one environment
// declaration.
type EngineBuilder func(cfg EnvironmentConfig) (engine.ExecutionEngine, error)

var validate = validator.New()

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewConfigurationError("invalid configuration document").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("cannot read configuration file %s", path)).WithCause(err)
	}
	return Parse(data)
}

// Validate checks structural constraints: required fields, known execution
// modes, unique identifiers, and at most one default environment.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigurationError("configuration validation failed").WithCause(err)
	}

	seen := make(map[string]struct{}, len(c.Environments))
	defaults := 0
	for _, env := range c.Environments {
		if _, dup := seen[env.ID]; dup {
			return apperrors.NewConfigurationError(fmt.Sprintf("duplicate environment id %q", env.ID))
		}
		seen[env.ID] = struct{}{}
		if env.Default || env.ID == registry.DefaultEnvironmentID {
			defaults++
		}
	}
	if defaults > 1 {
		return apperrors.NewConfigurationError("more than one environment is marked as default")
	}
	return nil
}

// Apply builds the engine of every declared environment and registers it
// with the registry. The environment flagged default is additionally
// registered under the sentinel default identifier. An unknown builder name
// or mode fails without registering anything further.
func (c *Config) Apply(reg *registry.Registry, builders map[string]EngineBuilder, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, envCfg := range c.Environments {
		builder, ok := builders[envCfg.Engine]
		if !ok {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("no engine builder named %q for environment %q", envCfg.Engine, envCfg.ID))
		}

		mode, err := engine.ParseExecMode(envCfg.Mode)
		if err != nil {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("environment %q: %v", envCfg.ID, err))
		}

		eng, err := builder(envCfg)
		if err != nil {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("building engine %q for environment %q failed", envCfg.Engine, envCfg.ID)).WithCause(err)
		}

		reg.Register(envCfg.ID, eng, mode)
		if envCfg.Default && envCfg.ID != registry.DefaultEnvironmentID {
			reg.Register(registry.DefaultEnvironmentID, eng, mode)
		}

		logger.Info("environment configured",
			zap.String("environment", envCfg.ID),
			zap.String("engine", envCfg.Engine),
			zap.String("mode", string(mode)),
			zap.Bool("default", envCfg.Default || envCfg.ID == registry.DefaultEnvironmentID),
		)
	}
	return nil
}
