package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// BacktestHTMLReport generates an interactive HTML report for rolling-window
// backtest results, with charts rendered by Chart.js from a CDN.
type BacktestHTMLReport struct {
	Result *domain.BacktestResult
}

// GenerateHTMLReport creates an HTML report at the given path
func (b *BacktestHTMLReport) GenerateHTMLReport(outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	html := b.generateHTML()
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	return nil
}

func (b *BacktestHTMLReport) generateHTML() string {
	r := b.Result
	successRate, _ := r.SuccessRate.Float64()

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Historical Backtest Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
            min-height: 100vh;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 15px;
            box-shadow: 0 20px 40px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #2c3e50 0%%, #3498db 100%%);
            color: white;
            padding: 30px;
            text-align: center;
        }
        .header h1 { font-size: 2.2em; margin-bottom: 8px; }
        .header p { opacity: 0.9; }
        .content { padding: 30px; }
        .summary-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .summary-card {
            background: #f8f9fa;
            border-radius: 10px;
            padding: 20px;
            text-align: center;
            border-left: 4px solid #3498db;
        }
        .summary-card.success { border-left-color: #27ae60; }
        .summary-card.warning { border-left-color: #f39c12; }
        .summary-card.danger { border-left-color: #e74c3c; }
        .summary-card h3 {
            color: #7f8c8d;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 8px;
        }
        .summary-card .value {
            font-size: 1.7em;
            font-weight: bold;
            color: #2c3e50;
        }
        .summary-card .detail { color: #95a5a6; font-size: 0.85em; margin-top: 5px; }
        .chart-section { margin-bottom: 40px; }
        .chart-section h2 {
            color: #2c3e50;
            margin-bottom: 15px;
            padding-bottom: 8px;
            border-bottom: 2px solid #ecf0f1;
        }
        .chart-container { position: relative; height: 360px; }
        table {
            width: 100%%;
            border-collapse: collapse;
            margin-top: 10px;
            font-size: 0.9em;
        }
        th {
            background: #2c3e50;
            color: white;
            padding: 10px 12px;
            text-align: left;
        }
        td { padding: 8px 12px; border-bottom: 1px solid #ecf0f1; }
        tr:hover { background: #f8f9fa; }
        .status-ok { color: #27ae60; font-weight: bold; }
        .status-failed { color: #e74c3c; font-weight: bold; }
        .risk-note {
            background: #f8f9fa;
            border-radius: 10px;
            padding: 20px;
            margin-bottom: 30px;
        }
        .risk-note h2 { color: #2c3e50; margin-bottom: 10px; }
        .risk-note ul { margin-left: 20px; color: #555; }
        .risk-note li { margin-bottom: 6px; }
        .footer {
            text-align: center;
            padding: 20px;
            color: #95a5a6;
            font-size: 0.85em;
            border-top: 1px solid #ecf0f1;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Historical Backtest Report</h1>
            <p>%d rolling %d-year windows, %s initial assets at %s</p>
        </div>
        <div class="content">
            <div class="summary-grid">
                <div class="summary-card %s">
                    <h3>Success Rate</h3>
                    <div class="value">%s</div>
                    <div class="detail">%s risk</div>
                </div>
                <div class="summary-card">
                    <h3>Windows Run</h3>
                    <div class="value">%d</div>
                    <div class="detail">%d years each</div>
                </div>
                <div class="summary-card success">
                    <h3>Best Window</h3>
                    <div class="value">%s</div>
                    <div class="detail">started %d, ended %d</div>
                </div>
                <div class="summary-card %s">
                    <h3>Worst Window</h3>
                    <div class="value">%s</div>
                    <div class="detail">started %d, ended %d</div>
                </div>
            </div>

            <div class="chart-section">
                <h2>Final Worth by Starting Year</h2>
                <div class="chart-container">
                    <canvas id="worthChart"></canvas>
                </div>
            </div>

            %s

            <div class="chart-section">
                <h2>All Windows</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Window</th>
                            <th>Outcome</th>
                            <th>Final Worth</th>
                            <th>Min Worth</th>
                            <th>Max Drawdown</th>
                            <th>Guardrail Years</th>
                        </tr>
                    </thead>
                    <tbody>
%s                    </tbody>
                </table>
            </div>

            <div class="risk-note">
                <h2>Reading This Report</h2>
                <ul>
%s                </ul>
            </div>
        </div>
        <div class="footer">
            Generated on %s. Past market returns do not guarantee future results.
        </div>
    </div>

    <script>
        const worthLabels = %s;
        const worthData = %s;
        const worthColors = %s;

        new Chart(document.getElementById('worthChart'), {
            type: 'bar',
            data: {
                labels: worthLabels,
                datasets: [{
                    label: 'Final Worth',
                    data: worthData,
                    backgroundColor: worthColors
                }]
            },
            options: {
                responsive: true,
                maintainAspectRatio: false,
                plugins: { legend: { display: false } },
                scales: {
                    y: {
                        ticks: {
                            callback: function(value) {
                                return '$' + value.toLocaleString();
                            }
                        }
                    }
                }
            }
        });
%s    </script>
</body>
</html>`,
		r.WindowsRun,
		r.WindowYears,
		FormatCurrency(r.Parameters.InitialAssets),
		FormatPercentage(r.Parameters.InitialWithdrawalRate),
		successRateClass(successRate),
		FormatPercentage(r.SuccessRate),
		riskLevel(successRate),
		r.WindowsRun,
		r.WindowYears,
		FormatCurrency(r.BestWindow.Summary.FinalWorth),
		r.BestWindow.StartYear,
		r.BestWindow.EndYear,
		worstWindowClass(&r.WorstWindow),
		FormatCurrency(r.WorstWindow.Summary.FinalWorth),
		r.WorstWindow.StartYear,
		r.WorstWindow.EndYear,
		b.buildDepletionSection(),
		b.buildWindowRows(),
		b.buildReadingNotes(),
		nowFunc().Format("2006-01-02 15:04:05"),
		b.buildWindowLabels(),
		b.buildWorthData(),
		b.buildWorthColors(),
		b.buildDepletionScript(),
	)
}

// buildWindowRows generates the table rows for every rolling window
func (b *BacktestHTMLReport) buildWindowRows() string {
	var rows strings.Builder
	for _, w := range b.Result.Windows {
		outcome := `<span class="status-ok">completed</span>`
		if !w.Success {
			outcome = fmt.Sprintf(`<span class="status-failed">depleted year %d</span>`, w.DepletionYear)
		}
		rows.WriteString(fmt.Sprintf(`                        <tr>
                            <td>%d-%d</td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%s</td>
                            <td>%d</td>
                        </tr>
`,
			w.StartYear,
			w.EndYear,
			outcome,
			FormatCurrency(w.Summary.FinalWorth),
			FormatCurrency(w.Summary.MinWorth),
			FormatPercentage(w.Summary.MaxDrawdownPercent),
			w.Summary.GuardrailYears,
		))
	}
	return rows.String()
}

func (b *BacktestHTMLReport) buildReadingNotes() string {
	r := b.Result
	failures := countFailures(r)

	var notes strings.Builder
	notes.WriteString(fmt.Sprintf("                    <li>Each window replays the same withdrawal plan against %d consecutive years of market history, advancing the start year by one each time.</li>\n", r.WindowYears))
	if failures == 0 {
		notes.WriteString("                    <li>Every window completed without depleting. The plan survived every historical sequence in the dataset.</li>\n")
	} else {
		notes.WriteString(fmt.Sprintf("                    <li>%d of %d windows depleted before completing. The depletion chart shows how many years those windows survived.</li>\n", failures, r.WindowsRun))
	}
	notes.WriteString("                    <li>The worst window shows sequence-of-returns risk. Retiring into a bad stretch matters more than average returns.</li>\n")
	return notes.String()
}

// buildDepletionSection renders the failure histogram section, or nothing when
// every window succeeded
func (b *BacktestHTMLReport) buildDepletionSection() string {
	if len(b.Result.DepletionCounts) == 0 {
		return ""
	}
	return `<div class="chart-section">
                <h2>Failures by Years Survived</h2>
                <div class="chart-container">
                    <canvas id="depletionChart"></canvas>
                </div>
            </div>`
}

func (b *BacktestHTMLReport) buildDepletionScript() string {
	if len(b.Result.DepletionCounts) == 0 {
		return ""
	}

	years := make([]int, 0, len(b.Result.DepletionCounts))
	for y := range b.Result.DepletionCounts {
		years = append(years, y)
	}
	sort.Ints(years)

	labels := "["
	data := "["
	for i, y := range years {
		if i > 0 {
			labels += ","
			data += ","
		}
		labels += fmt.Sprintf("'%d years'", y)
		data += fmt.Sprintf("%d", b.Result.DepletionCounts[y])
	}
	labels += "]"
	data += "]"

	return fmt.Sprintf(`
        new Chart(document.getElementById('depletionChart'), {
            type: 'bar',
            data: {
                labels: %s,
                datasets: [{
                    label: 'Windows',
                    data: %s,
                    backgroundColor: 'rgba(231, 76, 60, 0.7)'
                }]
            },
            options: {
                responsive: true,
                maintainAspectRatio: false,
                plugins: { legend: { display: false } },
                scales: { y: { beginAtZero: true, ticks: { stepSize: 1 } } }
            }
        });
`, labels, data)
}

func (b *BacktestHTMLReport) buildWindowLabels() string {
	labels := "["
	for i, w := range b.Result.Windows {
		if i > 0 {
			labels += ","
		}
		labels += fmt.Sprintf("'%d'", w.StartYear)
	}
	labels += "]"
	return labels
}

func (b *BacktestHTMLReport) buildWorthData() string {
	data := "["
	for i, w := range b.Result.Windows {
		if i > 0 {
			data += ","
		}
		data += w.Summary.FinalWorth.StringFixed(0)
	}
	data += "]"
	return data
}

// buildWorthColors colors each bar green for completed windows and red for
// depleted ones
func (b *BacktestHTMLReport) buildWorthColors() string {
	colors := "["
	for i, w := range b.Result.Windows {
		if i > 0 {
			colors += ","
		}
		if w.Success {
			colors += "'rgba(39, 174, 96, 0.7)'"
		} else {
			colors += "'rgba(231, 76, 60, 0.7)'"
		}
	}
	colors += "]"
	return colors
}

func successRateClass(rate float64) string {
	if rate >= 90 {
		return "success"
	}
	if rate >= 70 {
		return "warning"
	}
	return "danger"
}

func riskLevel(rate float64) string {
	if rate >= 95 {
		return "very low"
	}
	if rate >= 90 {
		return "low"
	}
	if rate >= 80 {
		return "moderate"
	}
	if rate >= 70 {
		return "elevated"
	}
	return "high"
}

func worstWindowClass(w *domain.WindowOutcome) string {
	if !w.Success {
		return "danger"
	}
	return "warning"
}
