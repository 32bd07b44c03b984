// Package config loads, validates, and writes simulation run configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/output"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// Bounds applied during validation. The engine itself accepts anything
// structurally valid; these keep configuration mistakes from turning into
// confusing degenerate runs.
const (
	maxYears          = 100
	maxWithdrawalRate = 100.0
	envPrefix         = "GKSIM"
	defaultConfigType = "yaml"
)

// Load reads the YAML configuration at path, applies environment overrides
// with the GKSIM_ prefix, and validates the result.
func Load(path string) (*domain.SimulationConfig, error) {
	viper.SetConfigFile(path)
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType(defaultConfigType)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var config domain.SimulationConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks every section of the configuration.
func Validate(config *domain.SimulationConfig) error {
	if err := validateParameters(&config.Parameters); err != nil {
		return fmt.Errorf("parameters validation failed: %w", err)
	}
	if err := validateData(&config.Data); err != nil {
		return fmt.Errorf("data validation failed: %w", err)
	}
	if err := validatePolicies(config.Policies); err != nil {
		return fmt.Errorf("policies validation failed: %w", err)
	}
	if err := validateOutput(&config.Output); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}
	return nil
}

// validateParameters checks the core run inputs. Float finiteness is checked
// here so the decimal engine never sees a NaN or an infinity.
func validateParameters(params *domain.ParametersConfig) error {
	if _, err := decimalutil.FromFloat(params.InitialAssets); err != nil {
		return fmt.Errorf("initial assets: %w", err)
	}
	if _, err := decimalutil.FromFloat(params.InitialWithdrawalRate); err != nil {
		return fmt.Errorf("initial withdrawal rate: %w", err)
	}
	if params.InitialAssets <= 0 {
		return fmt.Errorf("initial assets must be positive")
	}
	if params.InitialWithdrawalRate <= 0 || params.InitialWithdrawalRate >= maxWithdrawalRate {
		return fmt.Errorf("initial withdrawal rate must be between 0 and %v percent", maxWithdrawalRate)
	}
	if params.Years < 1 || params.Years > maxYears {
		return fmt.Errorf("years must be between 1 and %d", maxYears)
	}
	return nil
}

func validateData(data *domain.DataConfig) error {
	switch data.Source {
	case "", dataset.SourceEmbedded:
	case dataset.SourceDirectory, dataset.SourceFile:
		if data.Path == "" {
			return fmt.Errorf("data source %q requires a path", data.Source)
		}
	default:
		return fmt.Errorf("unknown data source %q (want %s, %s or %s)",
			data.Source, dataset.SourceEmbedded, dataset.SourceDirectory, dataset.SourceFile)
	}
	if data.StartYear < 0 {
		return fmt.Errorf("start year cannot be negative")
	}
	return nil
}

func validatePolicies(policies []string) error {
	for _, name := range policies {
		if _, err := simulation.PolicyByName(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func validateOutput(out *domain.OutputConfig) error {
	if out.Format == "" {
		return nil
	}
	if _, err := output.GetFormatterByName(out.Format); err != nil {
		return err
	}
	return nil
}

// Parameters converts the validated configuration into engine parameters.
func Parameters(config *domain.SimulationConfig) (domain.SimulationParameters, error) {
	return simulation.ParametersFromFloats(
		config.Parameters.InitialAssets,
		config.Parameters.InitialWithdrawalRate,
		config.Parameters.Years,
	)
}

// PolicyNames returns the configured policy set, falling back to the default
// when the configuration names none.
func PolicyNames(config *domain.SimulationConfig) []string {
	if len(config.Policies) == 0 {
		return simulation.DefaultPolicyNames()
	}
	return config.Policies
}

// ExampleConfig returns a complete configuration with sensible defaults. The
// example command writes it for new users to start from.
func ExampleConfig() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		Metadata: domain.Metadata{
			Name:        "thirty-year-guardrails",
			Description: "A 30-year guardrails withdrawal plan over the built-in market history",
		},
		Parameters: domain.ParametersConfig{
			InitialAssets:         1000000,
			InitialWithdrawalRate: 5,
			Years:                 30,
		},
		Data: domain.DataConfig{
			Source: dataset.SourceEmbedded,
		},
		Policies: []string{
			simulation.PolicyGuardrails,
			simulation.PolicyInflationAdjusted,
		},
		Output: domain.OutputConfig{
			Format:    "console",
			Directory: "./reports",
		},
		Logging: domain.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SaveConfig writes a configuration to path as YAML.
func SaveConfig(config *domain.SimulationConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
