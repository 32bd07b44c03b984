// Command gksim simulates guardrails retirement withdrawal plans over
// historical market data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/output"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// logger is built in PersistentPreRunE and shared by every command.
var logger *zap.Logger

// Global flags.
var (
	logLevelFlag  string
	logFormatFlag string
	quietFlag     bool
)

// Shared run flags, registered per command by addRunFlags.
var (
	configPath    string
	assetsFlag    float64
	rateFlag      float64
	yearsFlag     int
	dataFlag      string
	startYearFlag int
	formatFlag    string
	outputDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gksim",
	Short: "Guardrails retirement withdrawal simulator",
	Long: `gksim projects retirement withdrawal plans year by year over historical
market returns and inflation, applying the guardrails rules: capped
inflation adjustments, a freeze after down years, and 10% corrections
when the withdrawal rate drifts 20% outside its target band.

Beyond a single projection it can backtest a plan across every rolling
historical window, sweep a range of starting rates, solve for the
highest sustainable rate, and serve the engine over a JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevelFlag
		if quietFlag {
			level = "error"
		}
		l, err := initializeLogger(domain.LoggingConfig{Level: level, Format: logFormatFlag})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gksim version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gksim version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// addRunFlags registers the flags shared by the simulation commands. Flags
// override the matching configuration file fields when both are given.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML run configuration")
	cmd.Flags().Float64Var(&assetsFlag, "assets", 1000000, "initial portfolio value in dollars")
	cmd.Flags().Float64Var(&rateFlag, "rate", 5, "initial withdrawal rate in percent")
	cmd.Flags().IntVar(&yearsFlag, "years", 30, "number of years to simulate")
	cmd.Flags().StringVar(&dataFlag, "data", "", "dataset file or directory (default: built-in market history)")
	cmd.Flags().IntVar(&startYearFlag, "start-year", 0, "first dataset year to use")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "console",
		"output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	cmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "./reports", "directory for written reports")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
