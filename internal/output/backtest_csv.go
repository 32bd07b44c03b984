package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// BacktestCSVReport generates CSV exports for rolling-window backtest results
type BacktestCSVReport struct {
	Result *domain.BacktestResult
}

// GenerateSummaryCSV creates a summary CSV with aggregate statistics
func (b *BacktestCSVReport) GenerateSummaryCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Metric", "Value", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	r := b.Result
	summaryData := [][]string{
		{"Window Years", strconv.Itoa(r.WindowYears), "Length of each rolling window"},
		{"Windows Run", strconv.Itoa(r.WindowsRun), "Number of rolling windows simulated"},
		{"Success Rate", FormatPercentage(r.SuccessRate), "Share of windows completing every year"},
		{"Best Window", fmt.Sprintf("%d-%d", r.BestWindow.StartYear, r.BestWindow.EndYear), "Window with the highest final worth"},
		{"Best Final Worth", FormatCurrency(r.BestWindow.Summary.FinalWorth), "Final worth of the best window"},
		{"Worst Window", fmt.Sprintf("%d-%d", r.WorstWindow.StartYear, r.WorstWindow.EndYear), "Window with the lowest final worth"},
		{"Worst Final Worth", FormatCurrency(r.WorstWindow.Summary.FinalWorth), "Final worth of the worst window"},
		{"Failed Windows", strconv.Itoa(countFailures(r)), "Windows that depleted before completing"},
	}

	for _, row := range summaryData {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write data row: %w", err)
		}
	}

	return nil
}

// GenerateWindowsCSV creates a detailed CSV with one row per rolling window
func (b *BacktestCSVReport) GenerateWindowsCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"StartYear",
		"EndYear",
		"Success",
		"YearsSurvived",
		"FinalWorth",
		"TotalWithdrawn",
		"MinWorth",
		"MaxDrawdownPercent",
		"GuardrailYears",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, w := range b.Result.Windows {
		survived := strconv.Itoa(b.Result.WindowYears)
		if !w.Success {
			survived = strconv.Itoa(w.DepletionYear)
		}
		row := []string{
			strconv.Itoa(w.StartYear),
			strconv.Itoa(w.EndYear),
			strconv.FormatBool(w.Success),
			survived,
			w.Summary.FinalWorth.StringFixed(2),
			w.Summary.TotalWithdrawn.StringFixed(2),
			w.Summary.MinWorth.StringFixed(2),
			w.Summary.MaxDrawdownPercent.StringFixed(2),
			strconv.Itoa(w.Summary.GuardrailYears),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write window row: %w", err)
		}
	}

	return nil
}

// GenerateDepletionCSV creates a CSV of failure counts keyed by years survived
func (b *BacktestCSVReport) GenerateDepletionCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"YearsSurvived", "Windows"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	years := make([]int, 0, len(b.Result.DepletionCounts))
	for y := range b.Result.DepletionCounts {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		row := []string{strconv.Itoa(y), strconv.Itoa(b.Result.DepletionCounts[y])}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write depletion row: %w", err)
		}
	}

	return nil
}

// GenerateAllCSVReports creates all CSV reports in a single directory
func (b *BacktestCSVReport) GenerateAllCSVReports(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	summaryPath := fmt.Sprintf("%s/backtest_summary.csv", outputDir)
	if err := b.GenerateSummaryCSV(summaryPath); err != nil {
		return fmt.Errorf("failed to generate summary CSV: %w", err)
	}

	windowsPath := fmt.Sprintf("%s/backtest_windows.csv", outputDir)
	if err := b.GenerateWindowsCSV(windowsPath); err != nil {
		return fmt.Errorf("failed to generate windows CSV: %w", err)
	}

	depletionPath := fmt.Sprintf("%s/backtest_depletions.csv", outputDir)
	if err := b.GenerateDepletionCSV(depletionPath); err != nil {
		return fmt.Errorf("failed to generate depletion CSV: %w", err)
	}

	return nil
}

func countFailures(r *domain.BacktestResult) int {
	failures := 0
	for _, w := range r.Windows {
		if !w.Success {
			failures++
		}
	}
	return failures
}
