package output

import (
	"testing"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

func makeRun(policy string, finalWorth int64, depleted bool, years int) domain.PolicyRun {
	results := make([]domain.YearResult, years)
	for i := range results {
		results[i] = domain.YearResult{Year: 1926 + i, EndWorth: decimal.NewFromInt(finalWorth)}
	}
	return domain.PolicyRun{
		Policy:  policy,
		Results: results,
		Summary: domain.SimulationSummary{
			FinalWorth:     decimal.NewFromInt(finalWorth),
			MinWorth:       decimal.NewFromInt(finalWorth),
			MinWorthYear:   1926,
			GuardrailYears: 2,
		},
		Depleted: depleted,
	}
}

func TestAnalyze_PrimaryRunDrivesVerdict(t *testing.T) {
	report := &domain.Report{
		Comparison: domain.RunComparison{
			Runs: []domain.PolicyRun{makeRun("guardrails", 500000, false, 10)},
		},
	}

	v := Analyze(report)
	if !v.Sustainable {
		t.Fatalf("expected sustainable verdict for a completed run")
	}
	if !v.FinalWorth.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("FinalWorth = %s, want 500000", v.FinalWorth)
	}
	if v.GuardrailYears != 2 {
		t.Fatalf("GuardrailYears = %d, want 2", v.GuardrailYears)
	}
	// 2 guardrail years over 10 simulated years
	if !v.GuardrailShare.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("GuardrailShare = %s, want 20", v.GuardrailShare)
	}
}

func TestAnalyze_DepletedPrimaryRunIsNotSustainable(t *testing.T) {
	report := &domain.Report{
		Comparison: domain.RunComparison{
			Runs: []domain.PolicyRun{makeRun("guardrails", 0, true, 4)},
		},
	}

	v := Analyze(report)
	if v.Sustainable {
		t.Fatalf("expected unsustainable verdict for a depleted run")
	}
	if v.BestPolicy != "" {
		t.Fatalf("no surviving policy should be recommended, got %q", v.BestPolicy)
	}
}

func TestAnalyze_RanksPoliciesByFinalWorth(t *testing.T) {
	report := &domain.Report{
		Comparison: domain.RunComparison{
			Runs: []domain.PolicyRun{
				makeRun("guardrails", 900000, false, 10),
				makeRun("fixed_percentage", 1100000, false, 10),
				makeRun("inflation_adjusted", 700000, false, 10),
			},
		},
	}

	v := Analyze(report)
	if v.BestPolicy != "fixed_percentage" {
		t.Fatalf("BestPolicy = %q, want fixed_percentage", v.BestPolicy)
	}
	if !v.BestWorth.Equal(decimal.NewFromInt(1100000)) {
		t.Fatalf("BestWorth = %s, want 1100000", v.BestWorth)
	}
}

func TestAnalyze_SkipsDepletedRunsInRanking(t *testing.T) {
	report := &domain.Report{
		Comparison: domain.RunComparison{
			Runs: []domain.PolicyRun{
				makeRun("guardrails", 400000, false, 10),
				// higher worth on paper but the run failed partway
				makeRun("inflation_adjusted", 999999, true, 6),
			},
		},
	}

	v := Analyze(report)
	if v.BestPolicy != "guardrails" {
		t.Fatalf("BestPolicy = %q, want guardrails (depleted runs excluded)", v.BestPolicy)
	}
}

func TestAnalyze_EmptyReport(t *testing.T) {
	v := Analyze(&domain.Report{})
	if v.Sustainable || v.BestPolicy != "" {
		t.Fatalf("empty report should yield a zero verdict, got %+v", v)
	}
}
