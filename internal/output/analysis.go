package output

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// Verdict encapsulates the sustainability call rendered at the end of the
// console, HTML, and PDF reports.
type Verdict struct {
	Sustainable    bool
	FinalWorth     decimal.Decimal
	WorstYear      int
	WorstYearWorth decimal.Decimal
	GuardrailYears int
	GuardrailShare decimal.Decimal // percent of simulated years
	BestPolicy     string          // policy with the highest final worth
	BestWorth      decimal.Decimal
}

// Analyze derives the verdict from a report's primary run and ranks the
// compared policies by final worth.
func Analyze(report *domain.Report) Verdict {
	run, ok := report.PrimaryRun()
	if !ok {
		return Verdict{}
	}

	v := Verdict{
		Sustainable:    !run.Depleted,
		FinalWorth:     run.Summary.FinalWorth,
		WorstYear:      run.Summary.MinWorthYear,
		WorstYearWorth: run.Summary.MinWorth,
		GuardrailYears: run.Summary.GuardrailYears,
	}
	if n := len(run.Results); n > 0 {
		v.GuardrailShare = decimal.NewFromInt(int64(v.GuardrailYears)).
			Div(decimal.NewFromInt(int64(n))).
			Mul(decimal.NewFromInt(100))
	}

	type ranked struct {
		name  string
		worth decimal.Decimal
	}
	var ranks []ranked
	for _, r := range report.Comparison.Runs {
		if r.Depleted {
			continue
		}
		ranks = append(ranks, ranked{r.Policy, r.Summary.FinalWorth})
	}
	if len(ranks) > 0 {
		sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].worth.GreaterThan(ranks[j].worth) })
		v.BestPolicy = ranks[0].name
		v.BestWorth = ranks[0].worth
	}
	return v
}
