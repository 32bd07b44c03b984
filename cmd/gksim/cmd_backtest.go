package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/config"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/output"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

var (
	windowFlag    int
	exportDirFlag string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the plan over every rolling historical window",
	Long: `Backtest starts the withdrawal plan in every historical year with
enough subsequent data for a full window, and reports how many of those
retirements would have survived.`,
	Example: `  gksim backtest --window 30
  gksim backtest --config plan.yaml --window 25 --export-dir ./reports`,
	RunE: runBacktest,
}

func init() {
	addRunFlags(backtestCmd)
	backtestCmd.Flags().IntVarP(&windowFlag, "window", "w", 30, "years per rolling window")
	backtestCmd.Flags().StringVar(&exportDirFlag, "export-dir", "",
		"also write per-window CSV files and an HTML backtest report to this directory")
}

func runBacktest(cmd *cobra.Command, args []string) error {
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
	allData, err := provider.AllData()
	if err != nil {
		return err
	}

	engine := newEngine()
	backtest, err := engine.Backtest(cmd.Context(), params, allData, windowFlag)
	if err != nil {
		return err
	}

	// The comparison over the first window gives the report its primary run;
	// the backtest section carries the rolling-window outcomes.
	windowData, err := provider.AnnualData(windowFlag)
	if err != nil {
		return err
	}
	windowParams := params
	windowParams.Years = windowFlag
	policies, err := buildPolicies(config.PolicyNames(cfg), engine)
	if err != nil {
		return err
	}
	comparison, err := simulation.Compare(cmd.Context(), windowParams, windowData, policies)
	if err != nil {
		return err
	}

	report := newReport(comparison, provider.Name())
	report.Backtest = &backtest
	logger.Info("backtest complete",
		zap.String("run_id", report.RunID),
		zap.Int("windows", backtest.WindowsRun),
		zap.String("success_rate", backtest.SuccessRate.StringFixed(2)))

	if err := renderReport(report, cfg.Output); err != nil {
		return err
	}
	if exportDirFlag != "" {
		return exportBacktest(&backtest, exportDirFlag)
	}
	return nil
}

// exportBacktest writes the window-level CSV files and the standalone HTML
// backtest report.
func exportBacktest(backtest *domain.BacktestResult, dir string) error {
	csvReport := &output.BacktestCSVReport{Result: backtest}
	if err := csvReport.GenerateAllCSVReports(dir); err != nil {
		return err
	}
	htmlReport := &output.BacktestHTMLReport{Result: backtest}
	htmlPath := filepath.Join(dir, "backtest_report.html")
	if err := htmlReport.GenerateHTMLReport(htmlPath); err != nil {
		return err
	}
	fmt.Printf("Backtest exports written to %s\n", dir)
	return nil
}
