package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/config"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

var floorFlag float64

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Find the highest sustainable initial withdrawal rate",
	Long: `Solve binary-searches the highest initial withdrawal rate whose
guardrails run survives every simulated year and finishes with a final
worth at or above the floor.`,
	Example: `  gksim solve --years 30
  gksim solve --config plan.yaml --floor 250000`,
	RunE: runSolve,
}

func init() {
	addRunFlags(solveCmd)
	solveCmd.Flags().Float64Var(&floorFlag, "floor", 0, "minimum acceptable final worth in dollars")
}

func runSolve(cmd *cobra.Command, args []string) error {
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
	spec := simulation.DefaultSolverSpec()
	spec.TargetFloor = decimal.NewFromFloat(floorFlag)
	solved, err := engine.SolveMaxRate(cmd.Context(), params, annualData, spec)
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
	report.Solver = &solved
	logger.Info("solve complete",
		zap.String("run_id", report.RunID),
		zap.String("rate", solved.Rate.StringFixed(3)),
		zap.Int("iterations", solved.Iterations))
	return renderReport(report, cfg.Output)
}
