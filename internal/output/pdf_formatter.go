package output

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFFormatter renders the report as a printable PDF document.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(report *domain.Report) ([]byte, error) {
	r := &pdfReport{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		report:  report,
		verdict: Analyze(report),
	}
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)

	r.addTitlePage()
	for i, run := range report.Comparison.Runs {
		r.addRunPage(i, run)
	}
	r.addSummaryPage()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type pdfReport struct {
	pdf     *fpdf.Fpdf
	report  *domain.Report
	verdict Verdict
}

func (r *pdfReport) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(45)
	r.pdf.CellFormat(contentWidth, 15, "Guardrails Withdrawal Plan", "", 1, "C", false, 0, "")

	if r.report.DatasetName != "" {
		r.pdf.SetFont("Arial", "", 14)
		r.pdf.SetTextColor(80, 80, 80)
		r.pdf.Ln(8)
		r.pdf.CellFormat(contentWidth, 10, fmt.Sprintf("Dataset: %s", r.report.DatasetName), "", 1, "C", false, 0, "")
	}

	generated := r.report.GeneratedAt
	if generated.IsZero() {
		generated = nowFunc()
	}
	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "C", false, 0, "")

	params := r.report.Comparison.Parameters
	r.pdf.Ln(18)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)

	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, "Plan Parameters", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	rows := []string{
		fmt.Sprintf("Initial Assets: %s", FormatCurrency(params.InitialAssets)),
		fmt.Sprintf("Initial Withdrawal Rate: %s", FormatPercentage(params.InitialWithdrawalRate)),
		fmt.Sprintf("Horizon: %d years", params.Years),
	}
	for _, row := range rows {
		r.pdf.CellFormat(contentWidth, 7, row, "LR", 1, "C", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")

	assumptions := r.report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	r.pdf.Ln(10)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, "Key Assumptions", "1", 1, "C", true, 0, "")
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for _, a := range assumptions {
		r.pdf.CellFormat(contentWidth, 6, "- "+a, "LR", 1, "L", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")

	r.pdf.Ln(12)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"This document is for informational purposes only and does not constitute financial advice. "+
			"Projections apply fixed historical data and the stated adjustment rules; actual results will vary.", "", "C", false)
}

func (r *pdfReport) addRunPage(idx int, run domain.PolicyRun) {
	r.pdf.AddPage()
	r.drawSectionHeader(fmt.Sprintf("Policy %d: %s", idx+1, run.Policy))

	headers := []string{"Year", "Start", "Planned", "Rule", "Actual", "Rate", "End"}
	widths := []float64{16, 31, 29, 23, 29, 17, 35}
	r.drawTableHeader(headers, widths)

	for _, yr := range run.Results {
		// leave room for the row before the auto page break fires
		if r.pdf.GetY() > 265 {
			r.pdf.AddPage()
			r.drawTableHeader(headers, widths)
		}
		r.drawTableRow([]string{
			intToString(yr.Year),
			FormatCurrency(yr.StartWorth),
			FormatCurrency(yr.PlannedWithdrawal),
			FormatRule(yr.Rule),
			FormatCurrency(yr.ActualWithdrawal),
			FormatPercentage(yr.ActualRate),
			FormatCurrency(yr.EndWorth),
		}, widths, false)
	}

	r.pdf.Ln(4)
	s := run.Summary
	results := [][]string{
		{"Final Worth:", FormatCurrency(s.FinalWorth)},
		{"Total Withdrawn:", FormatCurrency(s.TotalWithdrawn)},
		{"Average Withdrawal:", FormatCurrency(s.AverageWithdrawal)},
		{"Max Drawdown:", FormatPercentage(s.MaxDrawdownPercent)},
		{"Minimum Worth:", fmt.Sprintf("%s (year %d)", FormatCurrency(s.MinWorth), s.MinWorthYear)},
		{"Guardrail Years:", intToString(s.GuardrailYears)},
	}
	if run.Depleted {
		results = append(results, []string{"WARNING:", fmt.Sprintf("Portfolio depleted after %d years", len(run.Results))})
	}
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	for _, row := range results {
		if row[0] == "WARNING:" {
			r.pdf.SetTextColor(180, 0, 0)
		}
		r.pdf.CellFormat(60, 5, row[0], "", 0, "L", false, 0, "")
		r.pdf.CellFormat(contentWidth-60, 5, row[1], "", 1, "L", false, 0, "")
		r.pdf.SetTextColor(50, 50, 50)
	}
}

func (r *pdfReport) addSummaryPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Comparison Summary")

	headers := []string{"Policy", "Final Worth", "Withdrawn", "Guardrails", "Outcome"}
	widths := []float64{48, 38, 38, 26, 30}
	r.drawTableHeader(headers, widths)
	for _, run := range r.report.Comparison.Runs {
		outcome := "completed"
		if run.Depleted {
			outcome = "depleted"
		}
		r.drawTableRow([]string{
			run.Policy,
			FormatCurrency(run.Summary.FinalWorth),
			FormatCurrency(run.Summary.TotalWithdrawn),
			intToString(run.Summary.GuardrailYears),
			outcome,
		}, widths, false)
	}

	if bt := r.report.Backtest; bt != nil {
		r.pdf.Ln(8)
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 7, fmt.Sprintf("Historical Backtest (%d-year windows)", bt.WindowYears), "", 1, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("%d windows, success rate %s", bt.WindowsRun, FormatPercentage(bt.SuccessRate)), "", 1, "L", false, 0, "")
		r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Best %d-%d, worst %d-%d",
			bt.BestWindow.StartYear, bt.BestWindow.EndYear, bt.WorstWindow.StartYear, bt.WorstWindow.EndYear), "", 1, "L", false, 0, "")
	}

	if sv := r.report.Solver; sv != nil {
		r.pdf.Ln(8)
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 7, "Max Sustainable Rate", "", 1, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("%s after %d iterations", FormatPercentage(sv.Rate), sv.Iterations), "", 1, "L", false, 0, "")
	}

	r.pdf.Ln(10)
	r.pdf.SetFont("Arial", "B", 11)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 7, "Verdict", "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	if r.verdict.Sustainable {
		r.pdf.SetTextColor(0, 128, 0)
		r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Sustainable: final worth %s", FormatCurrency(r.verdict.FinalWorth)), "", 1, "L", false, 0, "")
	} else {
		r.pdf.SetTextColor(180, 0, 0)
		r.pdf.CellFormat(contentWidth, 5, "Not sustainable: the portfolio was depleted before the final year", "", 1, "L", false, 0, "")
	}
	r.pdf.SetTextColor(50, 50, 50)
	if r.verdict.BestPolicy != "" {
		r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Best policy by final worth: %s (%s)", r.verdict.BestPolicy, FormatCurrency(r.verdict.BestWorth)), "", 1, "L", false, 0, "")
	}

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(128, 128, 128)
	r.pdf.MultiCell(contentWidth, 4,
		"This report was generated by the Guardrails Withdrawal Simulator. "+
			"Projections are based on the assumptions provided and actual results may vary. "+
			"This is not financial advice.", "", "C", false)
}

// Helper functions

func (r *pdfReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *pdfReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
