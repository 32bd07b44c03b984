package output

import (
	"bytes"
	"encoding/csv"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// CSVDetailedExporter provides raw annual detail, one row per policy per year.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Policy", "Year", "StartWorth", "InflationApplied", "PlannedWithdrawal", "PlannedRate", "Rule", "ActualWithdrawal", "ActualRate", "PostWithdrawalBalance", "ReturnPercent", "EndWorth"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, run := range report.Comparison.Runs {
		for _, yr := range run.Results {
			row := []string{
				run.Policy,
				intToString(yr.Year),
				yr.StartWorth.StringFixed(2),
				yr.InflationApplied.StringFixed(2),
				yr.PlannedWithdrawal.StringFixed(2),
				yr.PlannedRate.StringFixed(2),
				string(yr.Rule),
				yr.ActualWithdrawal.StringFixed(2),
				yr.ActualRate.StringFixed(2),
				yr.PostWithdrawalBalance.StringFixed(2),
				yr.ReturnPercent.StringFixed(2),
				yr.EndWorth.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
