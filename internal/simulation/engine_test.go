package simulation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

func testParams(assets int64, rate float64, years int) domain.SimulationParameters {
	return domain.SimulationParameters{
		InitialAssets:         decimal.NewFromInt(assets),
		InitialWithdrawalRate: decimal.NewFromFloat(rate),
		Years:                 years,
	}
}

func testDatum(year int, returnPercent, inflationPercent float64) domain.AnnualDatum {
	return domain.AnnualDatum{
		Year:             year,
		ReturnPercent:    decimal.NewFromFloat(returnPercent),
		InflationPercent: decimal.NewFromFloat(inflationPercent),
	}
}

// TestSimulateSingleYear checks the hand-computed single-year case: the first
// year withdraws the initial rate with no inflation and no guardrails.
func TestSimulateSingleYear(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 1)
	data := []domain.AnnualDatum{testDatum(2020, 10, 0)}

	results, err := engine.Simulate(params, data)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	yr := results[0]
	assert.Equal(t, 2020, yr.Year)
	assert.Equal(t, domain.RuleInitial, yr.Rule)
	assert.True(t, yr.StartWorth.Equal(decimal.NewFromInt(1000000)),
		"start worth: expected 1000000.00, got %s", yr.StartWorth.StringFixed(2))
	assert.True(t, yr.InflationApplied.IsZero(),
		"first year applies no inflation, got %s", yr.InflationApplied.StringFixed(2))
	assert.True(t, yr.PlannedWithdrawal.Equal(decimal.NewFromInt(50000)),
		"planned withdrawal: expected 50000.00, got %s", yr.PlannedWithdrawal.StringFixed(2))
	assert.True(t, yr.PlannedRate.Equal(decimal.NewFromInt(5)),
		"planned rate: expected 5.00, got %s", yr.PlannedRate.StringFixed(2))
	assert.True(t, yr.ActualWithdrawal.Equal(decimal.NewFromInt(50000)),
		"actual withdrawal: expected 50000.00, got %s", yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.ActualRate.Equal(decimal.NewFromInt(5)),
		"actual rate: expected 5.00, got %s", yr.ActualRate.StringFixed(2))
	assert.True(t, yr.PostWithdrawalBalance.Equal(decimal.NewFromInt(950000)),
		"post-withdrawal balance: expected 950000.00, got %s", yr.PostWithdrawalBalance.StringFixed(2))
	assert.True(t, yr.EndWorth.Equal(decimal.NewFromInt(1045000)),
		"end worth: expected 1045000.00, got %s", yr.EndWorth.StringFixed(2))
}

// TestSimulateInflationFreeze checks that after a losing year the inflation
// increase is suppressed when it would push the rate above the initial target,
// and the withdrawal carries over unchanged.
func TestSimulateInflationFreeze(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 2)
	data := []domain.AnnualDatum{
		testDatum(2020, -5, 0),
		testDatum(2021, 0, 5),
	}

	results, err := engine.Simulate(params, data)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// 950000 * 0.95 = 902500 carried into the second year.
	assert.True(t, results[0].EndWorth.Equal(decimal.NewFromInt(902500)),
		"first year end worth: expected 902500.00, got %s", results[0].EndWorth.StringFixed(2))

	yr := results[1]
	// 52500 / 902500 = 5.82% would exceed the 5% target after a -5% year.
	assert.Equal(t, domain.RuleInflationFrozen, yr.Rule)
	assert.True(t, yr.ActualWithdrawal.Equal(results[0].ActualWithdrawal),
		"frozen withdrawal must match prior year: expected %s, got %s",
		results[0].ActualWithdrawal.StringFixed(2), yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.InflationApplied.Equal(decimal.NewFromInt(5)),
		"recorded inflation: expected 5.00, got %s", yr.InflationApplied.StringFixed(2))
	assert.True(t, yr.PostWithdrawalBalance.Equal(decimal.NewFromInt(852500)),
		"post-withdrawal balance: expected 852500.00, got %s", yr.PostWithdrawalBalance.StringFixed(2))
	assert.True(t, yr.EndWorth.Equal(decimal.NewFromInt(852500)),
		"end worth: expected 852500.00, got %s", yr.EndWorth.StringFixed(2))
}

// TestSimulateCapitalPreservation checks that a planned rate above 1.2x the
// initial rate cuts the withdrawal by exactly 10%.
func TestSimulateCapitalPreservation(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 2)
	data := []domain.AnnualDatum{
		testDatum(2020, -40, 0),
		testDatum(2021, 0, 0),
	}

	results, err := engine.Simulate(params, data)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// 950000 * 0.6 = 570000; 50000 / 570000 = 8.77% > 6% threshold.
	yr := results[1]
	assert.Equal(t, domain.RuleCapitalPreservation, yr.Rule)
	assert.True(t, yr.ActualWithdrawal.Equal(yr.PlannedWithdrawal.Mul(decimal.NewFromFloat(0.9))),
		"cut must be exactly 0.9x planned: planned %s, actual %s",
		yr.PlannedWithdrawal.StringFixed(2), yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.ActualWithdrawal.Equal(decimal.NewFromInt(45000)),
		"actual withdrawal: expected 45000.00, got %s", yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.PostWithdrawalBalance.Equal(decimal.NewFromInt(525000)),
		"post-withdrawal balance: expected 525000.00, got %s", yr.PostWithdrawalBalance.StringFixed(2))
	assert.True(t, yr.EndWorth.Equal(decimal.NewFromInt(525000)),
		"end worth: expected 525000.00, got %s", yr.EndWorth.StringFixed(2))
}

// TestSimulateProsperity checks that a planned rate below 0.8x the initial
// rate raises the withdrawal by exactly 10%.
func TestSimulateProsperity(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 2)
	data := []domain.AnnualDatum{
		testDatum(2020, 50, 0),
		testDatum(2021, 0, 0),
	}

	results, err := engine.Simulate(params, data)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// 950000 * 1.5 = 1425000; 50000 / 1425000 = 3.51% < 4% threshold.
	yr := results[1]
	assert.Equal(t, domain.RuleProsperity, yr.Rule)
	assert.True(t, yr.ActualWithdrawal.Equal(yr.PlannedWithdrawal.Mul(decimal.NewFromFloat(1.1))),
		"raise must be exactly 1.1x planned: planned %s, actual %s",
		yr.PlannedWithdrawal.StringFixed(2), yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.ActualWithdrawal.Equal(decimal.NewFromInt(55000)),
		"actual withdrawal: expected 55000.00, got %s", yr.ActualWithdrawal.StringFixed(2))
	assert.True(t, yr.EndWorth.Equal(decimal.NewFromInt(1370000)),
		"end worth: expected 1370000.00, got %s", yr.EndWorth.StringFixed(2))
}

// TestSimulateInflationCap checks that the applied increase never exceeds 6%
// even when recorded inflation is higher.
func TestSimulateInflationCap(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 2)
	data := []domain.AnnualDatum{
		testDatum(2020, 20, 0),
		testDatum(2021, 0, 12),
	}

	results, err := engine.Simulate(params, data)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	yr := results[1]
	assert.Equal(t, domain.RuleInflation, yr.Rule)
	assert.True(t, yr.InflationApplied.Equal(decimal.NewFromInt(12)),
		"recorded inflation keeps the raw value: expected 12.00, got %s", yr.InflationApplied.StringFixed(2))
	// 50000 * 1.06 = 53000, not 50000 * 1.12 = 56000.
	assert.True(t, yr.ActualWithdrawal.Equal(decimal.NewFromInt(53000)),
		"capped withdrawal: expected 53000.00, got %s", yr.ActualWithdrawal.StringFixed(2))
}

// TestSimulateGuardrailScaling verifies the guardrails are mutually exclusive
// and apply their exact factors, across a run that triggers each rule.
func TestSimulateGuardrailScaling(t *testing.T) {
	tests := []struct {
		name         string
		data         []domain.AnnualDatum
		expectedRule domain.Rule
	}{
		{
			name: "capital preservation after a crash",
			data: []domain.AnnualDatum{
				testDatum(2020, -40, 0),
				testDatum(2021, 0, 0),
			},
			expectedRule: domain.RuleCapitalPreservation,
		},
		{
			name: "prosperity after a boom",
			data: []domain.AnnualDatum{
				testDatum(2020, 50, 0),
				testDatum(2021, 0, 0),
			},
			expectedRule: domain.RuleProsperity,
		},
		{
			name: "no guardrail inside the band",
			data: []domain.AnnualDatum{
				testDatum(2020, 5, 0),
				testDatum(2021, 0, 2),
			},
			expectedRule: domain.RuleInflation,
		},
	}

	cut := decimal.NewFromFloat(0.9)
	raise := decimal.NewFromFloat(1.1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			results, err := engine.Simulate(testParams(1000000, 5, 2), tt.data)
			assert.NoError(t, err)

			yr := results[1]
			assert.Equal(t, tt.expectedRule, yr.Rule)
			switch yr.Rule {
			case domain.RuleCapitalPreservation:
				assert.True(t, yr.ActualWithdrawal.Equal(yr.PlannedWithdrawal.Mul(cut)),
					"capital preservation must scale by exactly 0.9")
			case domain.RuleProsperity:
				assert.True(t, yr.ActualWithdrawal.Equal(yr.PlannedWithdrawal.Mul(raise)),
					"prosperity must scale by exactly 1.1")
			default:
				assert.True(t, yr.ActualWithdrawal.Equal(yr.PlannedWithdrawal),
					"no guardrail means actual equals planned")
			}
		})
	}
}

func TestSimulateDeterminism(t *testing.T) {
	params := testParams(750000, 4.5, 6)
	data := []domain.AnnualDatum{
		testDatum(2015, 7.5, 2.1),
		testDatum(2016, -12.3, 1.4),
		testDatum(2017, 18.2, 2.9),
		testDatum(2018, -3.7, 8.5),
		testDatum(2019, 25.0, 1.8),
		testDatum(2020, 4.4, 3.3),
	}
	before := make([]domain.AnnualDatum, len(data))
	copy(before, data)

	first, err := Simulate(params, data)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Simulate(params, data)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, data); diff != "" {
		t.Errorf("input data mutated (-before +after):\n%s", diff)
	}
}

// TestSimulateChainingInvariants walks a varied multi-year run and checks the
// identities that must hold for every year regardless of which rules fire.
func TestSimulateChainingInvariants(t *testing.T) {
	engine := NewEngine()
	params := testParams(1200000, 5, 10)
	data := []domain.AnnualDatum{
		testDatum(2010, 12.8, 1.5),
		testDatum(2011, -18.0, 3.0),
		testDatum(2012, 2.1, 4.2),
		testDatum(2013, 31.5, 1.2),
		testDatum(2014, 14.6, 0.8),
		testDatum(2015, -6.2, 0.1),
		testDatum(2016, 9.9, 2.5),
		testDatum(2017, 21.3, 2.2),
		testDatum(2018, -4.8, 7.9),
		testDatum(2019, 28.4, 2.3),
	}

	results, err := engine.Simulate(params, data)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if len(results) != params.Years {
		t.Fatalf("expected %d results, got %d", params.Years, len(results))
	}

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	for i, yr := range results {
		if yr.Year != data[i].Year {
			t.Errorf("year %d: label %d does not match datum %d", i, yr.Year, data[i].Year)
		}
		if !yr.Rule.IsValid() {
			t.Errorf("year %d: invalid rule %q", i, yr.Rule)
		}
		if i == 0 {
			if yr.Rule != domain.RuleInitial {
				t.Errorf("first year rule: expected %s, got %s", domain.RuleInitial, yr.Rule)
			}
		} else if yr.Rule == domain.RuleInitial {
			t.Errorf("year %d: Initial rule must only appear in the first year", i)
		}

		if i > 0 && !yr.StartWorth.Equal(results[i-1].EndWorth) {
			t.Errorf("year %d: start worth %s does not chain from prior end worth %s",
				i, yr.StartWorth.StringFixed(2), results[i-1].EndWorth.StringFixed(2))
		}
		if post := yr.StartWorth.Sub(yr.ActualWithdrawal); !yr.PostWithdrawalBalance.Equal(post) {
			t.Errorf("year %d: post-withdrawal balance %s, expected %s",
				i, yr.PostWithdrawalBalance.StringFixed(2), post.StringFixed(2))
		}
		growth := one.Add(yr.ReturnPercent.Div(hundred))
		if end := yr.PostWithdrawalBalance.Mul(growth); !yr.EndWorth.Equal(end) {
			t.Errorf("year %d: end worth %s, expected %s",
				i, yr.EndWorth.StringFixed(2), end.StringFixed(2))
		}
		if rate := yr.ActualWithdrawal.Div(yr.StartWorth).Mul(hundred); !yr.ActualRate.Equal(rate) {
			t.Errorf("year %d: actual rate %s, expected %s",
				i, yr.ActualRate.StringFixed(4), rate.StringFixed(4))
		}
	}
}

func TestSimulateDegenerateState(t *testing.T) {
	engine := NewEngine()

	t.Run("depletion mid-run returns partial results", func(t *testing.T) {
		params := testParams(100000, 5, 3)
		data := []domain.AnnualDatum{
			testDatum(2020, -100, 0),
			testDatum(2021, 0, 0),
			testDatum(2022, 0, 0),
		}

		results, err := engine.Simulate(params, data)
		assert.ErrorIs(t, err, ErrDegenerateState)
		assert.Len(t, results, 1, "the completed year must be returned")
		assert.True(t, results[0].EndWorth.IsZero(),
			"end worth: expected 0.00, got %s", results[0].EndWorth.StringFixed(2))
	})

	t.Run("non-positive initial assets fail before the first year", func(t *testing.T) {
		params := testParams(0, 5, 1)
		data := []domain.AnnualDatum{testDatum(2020, 10, 0)}

		results, err := engine.Simulate(params, data)
		assert.ErrorIs(t, err, ErrDegenerateState)
		assert.NotErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, results)
	})
}

func TestSimulateInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		params domain.SimulationParameters
		data   []domain.AnnualDatum
	}{
		{
			name:   "zero years",
			params: testParams(1000000, 5, 0),
			data:   nil,
		},
		{
			name:   "negative years",
			params: testParams(1000000, 5, -3),
			data:   nil,
		},
		{
			name:   "fewer data entries than years",
			params: testParams(1000000, 5, 2),
			data:   []domain.AnnualDatum{testDatum(2020, 10, 0)},
		},
		{
			name:   "more data entries than years",
			params: testParams(1000000, 5, 1),
			data: []domain.AnnualDatum{
				testDatum(2020, 10, 0),
				testDatum(2021, 10, 0),
			},
		},
	}

	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.Simulate(tt.params, tt.data)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, results, "invalid input must produce no results")
		})
	}
}
