package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/config"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

var (
	sweepMinFlag   float64
	sweepMaxFlag   float64
	sweepStepsFlag int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep a range of initial withdrawal rates",
	Long: `Sweep runs the guardrails plan at evenly spaced initial withdrawal
rates and summarizes each run, showing how sensitive the outcome is to
the starting rate.`,
	Example: `  gksim sweep --min 3 --max 7 --steps 9
  gksim sweep --config plan.yaml --min 4 --max 6 --steps 21 --format csv`,
	RunE: runSweep,
}

func init() {
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMinFlag, "min", 3, "lowest rate to try, in percent")
	sweepCmd.Flags().Float64Var(&sweepMaxFlag, "max", 7, "highest rate to try, in percent")
	sweepCmd.Flags().IntVar(&sweepStepsFlag, "steps", 9, "number of rates to sample, endpoints inclusive")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
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
	spec := simulation.SweepSpec{
		MinRate: decimal.NewFromFloat(sweepMinFlag),
		MaxRate: decimal.NewFromFloat(sweepMaxFlag),
		Steps:   sweepStepsFlag,
	}
	sweep, err := engine.SweepRates(cmd.Context(), params, annualData, spec)
	if err != nil {
		return err
	}

	policies, err := buildPolicies(config.PolicyNames(cfg), engine)
	if err != nil {
		return err
	}
	comparison, err := simulation.Compare(cmd.Context(), params, annualData, policies)
	if err != nil {
		return err
	}

	report := newReport(comparison, provider.Name())
	report.Sweep = &sweep
	logger.Info("sweep complete",
		zap.String("run_id", report.RunID),
		zap.Int("rates", len(sweep.Points)))
	return renderReport(report, cfg.Output)
}
