package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// ConsoleVerboseFormatter renders the full detailed console report via the pluggable interface.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "GUARDRAILS WITHDRAWAL ANALYSIS")
	fmt.Fprintln(&buf, "=================================================================================")
	if report.RunID != "" {
		fmt.Fprintf(&buf, "Run ID:  %s\n", report.RunID)
	}
	if report.DatasetName != "" {
		fmt.Fprintf(&buf, "Dataset: %s\n", report.DatasetName)
	}
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "Date:    %s\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	params := report.Comparison.Parameters
	fmt.Fprintln(&buf, "PARAMETERS")
	fmt.Fprintln(&buf, "==========")
	fmt.Fprintf(&buf, "Initial Assets:   %s\n", FormatCurrency(params.InitialAssets))
	fmt.Fprintf(&buf, "Withdrawal Rate:  %s\n", FormatPercentage(params.InitialWithdrawalRate))
	fmt.Fprintf(&buf, "Years:            %d\n", params.Years)
	fmt.Fprintln(&buf)

	for i, run := range report.Comparison.Runs {
		fmt.Fprintf(&buf, "POLICY %d: %s\n", i+1, run.Policy)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		writeYearTable(&buf, run.Results)
		if run.Depleted {
			fmt.Fprintf(&buf, "RUN DEPLETED: portfolio exhausted after %d of %d years\n", len(run.Results), params.Years)
		}
		writeRunSummary(&buf, run)
		fmt.Fprintln(&buf)
	}

	if report.Backtest != nil {
		writeBacktestSection(&buf, report.Backtest)
	}
	if report.Sweep != nil {
		writeSweepSection(&buf, report.Sweep)
	}
	if report.Solver != nil {
		writeSolverSection(&buf, report.Solver)
	}

	v := Analyze(report)
	fmt.Fprintln(&buf, "VERDICT")
	fmt.Fprintln(&buf, "=======")
	if v.Sustainable {
		fmt.Fprintf(&buf, "Plan: SUSTAINABLE, final worth %s after %d years\n", FormatCurrency(v.FinalWorth), params.Years)
	} else {
		fmt.Fprintf(&buf, "Plan: NOT SUSTAINABLE, portfolio depleted before year %d\n", params.Years)
	}
	if run, ok := report.PrimaryRun(); ok && len(run.Results) > 0 {
		fmt.Fprintf(&buf, "Guardrails fired in %d of %d years (%s)\n", v.GuardrailYears, len(run.Results), FormatPercentage(v.GuardrailShare))
		fmt.Fprintf(&buf, "Leanest year: %d at %s\n", v.WorstYear, FormatCurrency(v.WorstYearWorth))
	}
	if v.BestPolicy != "" {
		fmt.Fprintf(&buf, "Best policy by final worth: %s (%s)\n", v.BestPolicy, FormatCurrency(v.BestWorth))
	}

	return buf.Bytes(), nil
}

func writeYearTable(buf *bytes.Buffer, results []domain.YearResult) {
	fmt.Fprintf(buf, "%-6s %14s %14s %-12s %14s %9s %14s\n",
		"YEAR", "START", "PLANNED", "RULE", "ACTUAL", "RATE", "END")
	fmt.Fprintln(buf, strings.Repeat("-", 88))
	for _, yr := range results {
		fmt.Fprintf(buf, "%-6d %14s %14s %-12s %14s %9s %14s\n",
			yr.Year,
			FormatCurrency(yr.StartWorth),
			FormatCurrency(yr.PlannedWithdrawal),
			FormatRule(yr.Rule),
			FormatCurrency(yr.ActualWithdrawal),
			FormatPercentage(yr.ActualRate),
			FormatCurrency(yr.EndWorth),
		)
	}
}

func writeRunSummary(buf *bytes.Buffer, run domain.PolicyRun) {
	s := run.Summary
	fmt.Fprintln(buf, "SUMMARY:")
	fmt.Fprintf(buf, "  Final Worth:        %s\n", FormatCurrency(s.FinalWorth))
	fmt.Fprintf(buf, "  Total Withdrawn:    %s\n", FormatCurrency(s.TotalWithdrawn))
	fmt.Fprintf(buf, "  Average Withdrawal: %s\n", FormatCurrency(s.AverageWithdrawal))
	fmt.Fprintf(buf, "  Worth Growth:       %s\n", FormatPercentage(s.WorthGrowthPercent))
	fmt.Fprintf(buf, "  Max Drawdown:       %s\n", FormatPercentage(s.MaxDrawdownPercent))
	fmt.Fprintf(buf, "  Minimum Worth:      %s (year %d)\n", FormatCurrency(s.MinWorth), s.MinWorthYear)
	fmt.Fprintf(buf, "  Guardrail Years:    %d of %d\n", s.GuardrailYears, len(run.Results))
	var parts []string
	for _, rule := range domain.AllRules() {
		if n := s.RuleCounts[rule]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", FormatRule(rule), n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(buf, "  Rule Counts:        %s\n", strings.Join(parts, ", "))
	}
}

func writeBacktestSection(buf *bytes.Buffer, bt *domain.BacktestResult) {
	fmt.Fprintf(buf, "HISTORICAL BACKTEST (%d-year windows)\n", bt.WindowYears)
	fmt.Fprintln(buf, strings.Repeat("=", 40))
	fmt.Fprintf(buf, "Windows Run:  %d\n", bt.WindowsRun)
	fmt.Fprintf(buf, "Success Rate: %s\n", FormatPercentage(bt.SuccessRate))
	fmt.Fprintf(buf, "Best Window:  %d-%d final %s\n", bt.BestWindow.StartYear, bt.BestWindow.EndYear, FormatCurrency(bt.BestWindow.Summary.FinalWorth))
	fmt.Fprintf(buf, "Worst Window: %d-%d final %s\n", bt.WorstWindow.StartYear, bt.WorstWindow.EndYear, FormatCurrency(bt.WorstWindow.Summary.FinalWorth))
	if len(bt.DepletionCounts) > 0 {
		years := make([]int, 0, len(bt.DepletionCounts))
		for y := range bt.DepletionCounts {
			years = append(years, y)
		}
		sort.Ints(years)
		var parts []string
		for _, y := range years {
			parts = append(parts, fmt.Sprintf("%d years x%d", y, bt.DepletionCounts[y]))
		}
		fmt.Fprintf(buf, "Failures by years survived: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintln(buf)
}

func writeSweepSection(buf *bytes.Buffer, sweep *domain.SweepResult) {
	fmt.Fprintln(buf, "RATE SWEEP")
	fmt.Fprintln(buf, "==========")
	fmt.Fprintf(buf, "%8s %16s %18s %10s\n", "RATE", "FINAL WORTH", "TOTAL WITHDRAWN", "STATUS")
	for _, p := range sweep.Points {
		status := "ok"
		if p.Depleted {
			status = "depleted"
		}
		fmt.Fprintf(buf, "%8s %16s %18s %10s\n",
			FormatPercentage(p.Rate),
			FormatCurrency(p.Summary.FinalWorth),
			FormatCurrency(p.Summary.TotalWithdrawn),
			status,
		)
	}
	fmt.Fprintln(buf)
}

func writeSolverSection(buf *bytes.Buffer, solver *domain.SolverResult) {
	fmt.Fprintln(buf, "MAX SUSTAINABLE RATE")
	fmt.Fprintln(buf, "====================")
	converged := "converged"
	if !solver.Converged {
		converged = "did not converge"
	}
	fmt.Fprintf(buf, "Rate:        %s (%s in %d iterations)\n", FormatPercentage(solver.Rate), converged, solver.Iterations)
	fmt.Fprintf(buf, "Final Worth: %s\n", FormatCurrency(solver.Summary.FinalWorth))
	fmt.Fprintln(buf)
}
