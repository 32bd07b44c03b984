package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/config"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

var policiesFlag []string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Project a withdrawal plan year by year",
	Long: `Simulate runs the guardrails withdrawal plan over the configured
dataset, alongside any comparison policies, and renders the projection
in the chosen format.`,
	Example: `  gksim simulate --assets 1200000 --rate 4.5 --years 35
  gksim simulate --config plan.yaml --format html
  gksim simulate --policy guardrails --policy inflation_adjusted`,
	RunE: runSimulate,
}

func init() {
	addRunFlags(simulateCmd)
	simulateCmd.Flags().StringSliceVar(&policiesFlag, "policy", nil,
		"withdrawal policy to run, repeatable (guardrails, fixed_percentage, inflation_adjusted)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policies = policiesFlag
	}

	params, err := config.Parameters(cfg)
	if err != nil {
		return err
	}
	provider, err := loadProvider(cfg)
	if err != nil {
		return err
	}
	annualData, err := provider.AnnualData(params.Years)
	if err != nil {
		return err
	}

	engine := newEngine()
	policies, err := buildPolicies(config.PolicyNames(cfg), engine)
	if err != nil {
		return err
	}

	comparison, err := simulation.Compare(cmd.Context(), params, annualData, policies)
	if err != nil {
		return err
	}
	report := newReport(comparison, provider.Name())
	logger.Info("simulation complete",
		zap.String("run_id", report.RunID),
		zap.Int("policies", len(comparison.Runs)),
		zap.Int("years", params.Years))

	if err := renderReport(report, cfg.Output); err != nil {
		return err
	}
	if run, ok := report.PrimaryRun(); ok && run.Depleted {
		return fmt.Errorf("portfolio depleted after %d of %d years", len(run.Results), params.Years)
	}
	return nil
}
