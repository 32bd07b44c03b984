package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets [path]",
	Short: "Inspect a dataset and report its quality",
	Long: `Datasets loads the built-in market history, or the dataset at the
given path, and prints its coverage, summary statistics, and any
quality concerns.`,
	Example: `  gksim datasets
  gksim datasets ./mydata
  gksim datasets returns-and-inflation.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDatasets,
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg := domain.DataConfig{Source: dataset.SourceEmbedded}
	if len(args) == 1 {
		cfg.Path = args[0]
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			cfg.Source = dataset.SourceDirectory
		} else {
			cfg.Source = dataset.SourceFile
		}
	}

	provider := dataset.NewProvider(cfg)
	if err := provider.Load(); err != nil {
		return err
	}

	all, err := provider.AllData()
	if err != nil {
		return err
	}
	fmt.Printf("Dataset: %s\n", provider.Name())
	fmt.Printf("Span:    %s (%d aligned years)\n\n", provider.Span(), len(all))
	printSeries("Returns", provider.Returns)
	printSeries("Inflation", provider.Inflation)

	warnings := provider.ValidateQuality()
	if len(warnings) == 0 {
		fmt.Println("No quality concerns.")
		return nil
	}
	fmt.Println("Warnings:")
	for _, warning := range warnings {
		fmt.Printf("  - %s\n", warning)
	}
	return nil
}

func printSeries(label string, series dataset.Series) {
	stats := series.Statistics
	fmt.Printf("%s (%d years, %s)\n", label, stats.Count, series.Span())
	fmt.Printf("  mean %s%%  median %s%%  stddev %s%%\n",
		stats.Mean.StringFixed(2), stats.Median.StringFixed(2), stats.StdDev.StringFixed(2))
	fmt.Printf("  min %s%%  max %s%%\n\n",
		stats.Min.StringFixed(2), stats.Max.StringFixed(2))
}
