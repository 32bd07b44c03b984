package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// Summarize condenses a run's year results into the headline metrics used by
// presenters and the backtest aggregator. It is deterministic and tolerates
// partial result slices from depleted runs.
func Summarize(params domain.SimulationParameters, results []domain.YearResult) domain.SimulationSummary {
	summary := domain.SimulationSummary{
		RuleCounts: make(map[domain.Rule]int, len(domain.AllRules())),
	}
	if len(results) == 0 {
		return summary
	}

	total := decimal.Zero
	minWorth := results[0].EndWorth
	minWorthYear := results[0].Year
	peak := results[0].StartWorth
	maxDrawdown := decimal.Zero

	for i := range results {
		yr := &results[i]
		total = total.Add(yr.ActualWithdrawal)
		summary.RuleCounts[yr.Rule]++
		if yr.Rule.IsGuardrail() {
			summary.GuardrailYears++
		}

		if yr.EndWorth.LessThan(minWorth) {
			minWorth = yr.EndWorth
			minWorthYear = yr.Year
		}
		if yr.EndWorth.GreaterThan(peak) {
			peak = yr.EndWorth
		} else if peak.IsPositive() {
			drawdown := decimalutil.RateOf(peak.Sub(yr.EndWorth), peak)
			if drawdown.GreaterThan(maxDrawdown) {
				maxDrawdown = drawdown
			}
		}
	}

	summary.FinalWorth = results[len(results)-1].EndWorth
	summary.TotalWithdrawn = total
	summary.AverageWithdrawal = total.Div(decimal.NewFromInt(int64(len(results))))
	summary.MinWorth = minWorth
	summary.MinWorthYear = minWorthYear
	summary.MaxDrawdownPercent = maxDrawdown
	if params.InitialAssets.IsPositive() {
		summary.WorthGrowthPercent = decimalutil.ChangePercent(params.InitialAssets, summary.FinalWorth)
	}
	return summary
}
