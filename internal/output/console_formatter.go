package output

import (
	"bytes"
	"fmt"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "WITHDRAWAL PLAN SUMMARY")
	fmt.Fprintln(&buf, "================================")
	params := report.Comparison.Parameters
	fmt.Fprintf(&buf, "Assets %s at %s for %d years\n",
		FormatCurrency(params.InitialAssets),
		FormatPercentage(params.InitialWithdrawalRate),
		params.Years,
	)
	fmt.Fprintln(&buf)
	for _, run := range report.Comparison.Runs {
		status := "ok"
		if run.Depleted {
			status = "DEPLETED"
		}
		fmt.Fprintf(&buf, "%s: Final=%s Withdrawn=%s MinWorth=%s(%d) Guardrails=%d [%s]\n",
			run.Policy,
			FormatCurrency(run.Summary.FinalWorth),
			FormatCurrency(run.Summary.TotalWithdrawn),
			FormatCurrency(run.Summary.MinWorth),
			run.Summary.MinWorthYear,
			run.Summary.GuardrailYears,
			status,
		)
	}
	v := Analyze(report)
	if v.BestPolicy != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Best final worth: %s (%s)\n", v.BestPolicy, FormatCurrency(v.BestWorth))
	}
	return buf.Bytes(), nil
}
