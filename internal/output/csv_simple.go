package output

import (
	"bytes"
	"encoding/csv"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per policy run).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Policy", "YearsCompleted", "FinalWorth", "TotalWithdrawn", "AverageWithdrawal", "MinWorth", "MinWorthYear", "MaxDrawdownPercent", "WorthGrowthPercent", "GuardrailYears", "Depleted"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, run := range report.Comparison.Runs {
		s := run.Summary
		row := []string{
			run.Policy,
			intToString(len(run.Results)),
			s.FinalWorth.StringFixed(2),
			s.TotalWithdrawn.StringFixed(2),
			s.AverageWithdrawal.StringFixed(2),
			s.MinWorth.StringFixed(2),
			intToString(s.MinWorthYear),
			s.MaxDrawdownPercent.StringFixed(2),
			s.WorthGrowthPercent.StringFixed(2),
			intToString(s.GuardrailYears),
			boolToString(run.Depleted),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
