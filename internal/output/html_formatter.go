package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// HTMLFormatter produces a standalone styled HTML report with an interactive
// worth chart.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":  FormatCurrency,
	"pct":   FormatPercentage,
	"rule":  FormatRule,
	"add":   func(i, j int) int { return i + j },
	"badge": ruleBadgeClass,
	"json": func(v interface{}) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}).Parse(htmlTemplateSource))

// chartSeries carries one policy's worth trajectory into the chart script.
type chartSeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

func (h HTMLFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	v := Analyze(report)

	// Use assumptions from the report if available, otherwise fall back to defaults
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}

	var labels []int
	if run, ok := report.PrimaryRun(); ok {
		for _, yr := range run.Results {
			labels = append(labels, yr.Year)
		}
	}
	var series []chartSeries
	for _, run := range report.Comparison.Runs {
		cs := chartSeries{Label: run.Policy}
		for _, yr := range run.Results {
			cs.Values = append(cs.Values, yr.EndWorth.InexactFloat64())
		}
		series = append(series, cs)
	}

	data := struct {
		*domain.Report
		Verdict     Verdict
		Assumptions []string
		ChartLabels []int
		ChartSeries []chartSeries
	}{report, v, assumptions, labels, series}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ruleBadgeClass(rule domain.Rule) string {
	switch rule {
	case domain.RuleInitial:
		return "badge initial"
	case domain.RuleInflationFrozen:
		return "badge frozen"
	case domain.RuleCapitalPreservation:
		return "badge cut"
	case domain.RuleProsperity:
		return "badge raise"
	}
	return "badge"
}
