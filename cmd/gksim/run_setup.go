package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/config"
	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/output"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

// resolveConfig builds the run configuration for a command: the configuration
// file when --config is given, with explicit flags overriding its fields, or
// the flags alone.
func resolveConfig(cmd *cobra.Command) (*domain.SimulationConfig, error) {
	if configPath == "" {
		cfg := &domain.SimulationConfig{
			Parameters: domain.ParametersConfig{
				InitialAssets:         assetsFlag,
				InitialWithdrawalRate: rateFlag,
				Years:                 yearsFlag,
			},
			Data: dataConfigFromFlags(),
			Output: domain.OutputConfig{
				Format:    formatFlag,
				Directory: outputDirFlag,
			},
		}
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyConfigLogging(cfg.Logging); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("assets") {
		cfg.Parameters.InitialAssets = assetsFlag
	}
	if flags.Changed("rate") {
		cfg.Parameters.InitialWithdrawalRate = rateFlag
	}
	if flags.Changed("years") {
		cfg.Parameters.Years = yearsFlag
	}
	if flags.Changed("data") || flags.Changed("start-year") {
		dataCfg := dataConfigFromFlags()
		if !flags.Changed("data") {
			dataCfg.Source = cfg.Data.Source
			dataCfg.Path = cfg.Data.Path
		}
		if !flags.Changed("start-year") {
			dataCfg.StartYear = cfg.Data.StartYear
		}
		cfg.Data = dataCfg
	}
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("output-dir") {
		cfg.Output.Directory = outputDirFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Metadata.Name != "" {
		logger.Info("loaded configuration",
			zap.String("path", configPath),
			zap.String("name", cfg.Metadata.Name))
	}
	return cfg, nil
}

// dataConfigFromFlags maps the --data flag onto a data source: empty means
// the embedded dataset, a directory holds the two CSV series, anything else
// is a single dataset document.
func dataConfigFromFlags() domain.DataConfig {
	cfg := domain.DataConfig{StartYear: startYearFlag}
	if dataFlag == "" {
		cfg.Source = dataset.SourceEmbedded
		return cfg
	}
	cfg.Path = dataFlag
	if info, err := os.Stat(dataFlag); err == nil && info.IsDir() {
		cfg.Source = dataset.SourceDirectory
	} else {
		cfg.Source = dataset.SourceFile
	}
	return cfg
}

// loadProvider loads the configured dataset and logs any quality warnings.
func loadProvider(cfg *domain.SimulationConfig) (*dataset.Provider, error) {
	provider := dataset.NewProvider(cfg.Data)
	if err := provider.Load(); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	for _, warning := range provider.ValidateQuality() {
		logger.Warn("dataset warning", zap.String("detail", warning))
	}
	logger.Debug("dataset loaded",
		zap.String("name", provider.Name()),
		zap.Stringer("span", provider.Span()))
	return provider, nil
}

// newEngine returns a simulation engine wired to the process logger.
func newEngine() *simulation.Engine {
	engine := simulation.NewEngine()
	engine.SetLogger(logger.Sugar())
	return engine
}

func buildPolicies(names []string, engine *simulation.Engine) ([]simulation.Policy, error) {
	policies := make([]simulation.Policy, 0, len(names))
	for _, name := range names {
		policy, err := simulation.PolicyByName(name, engine)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

func newReport(comparison domain.RunComparison, datasetName string) *domain.Report {
	return &domain.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		DatasetName: datasetName,
		Comparison:  comparison,
		Assumptions: output.GenerateAssumptions(comparison.Parameters),
	}
}

// renderReport sends console formats to stdout and writes everything else
// into the output directory.
func renderReport(report *domain.Report, out domain.OutputConfig) error {
	format := out.Format
	if format == "" {
		format = "console"
	}
	switch output.NormalizeFormatName(format) {
	case "console", "console-lite":
		formatter, err := output.GetFormatterByName(format)
		if err != nil {
			return err
		}
		data, err := formatter.Format(report)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		path, err := output.GenerateReport(report, format, out.Directory)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	}
}
