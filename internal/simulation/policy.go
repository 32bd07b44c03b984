package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// Policy names accepted in configuration files and on the command line.
const (
	PolicyGuardrails        = "guardrails"
	PolicyFixedPercentage   = "fixed_percentage"
	PolicyInflationAdjusted = "inflation_adjusted"
)

// Policy is a withdrawal strategy run over the same inputs as the engine.
// The guardrails policy is the canonical one; the others are fixed baselines
// for side-by-side comparison and never affect the guardrails arithmetic.
type Policy interface {
	Run(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error)
	Name() string
}

// PolicyByName maps a configured policy name onto an implementation backed by
// the given engine.
func PolicyByName(name string, engine *Engine) (Policy, error) {
	switch name {
	case PolicyGuardrails:
		return &GuardrailsPolicy{engine: engine}, nil
	case PolicyFixedPercentage:
		return FixedPercentagePolicy{}, nil
	case PolicyInflationAdjusted:
		return InflationAdjustedPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q (known: %s, %s, %s)",
			ErrInvalidInput, name, PolicyGuardrails, PolicyFixedPercentage, PolicyInflationAdjusted)
	}
}

// DefaultPolicyNames returns the policy set used when a configuration names none.
func DefaultPolicyNames() []string {
	return []string{PolicyGuardrails}
}

// GuardrailsPolicy runs the full guardrails engine.
type GuardrailsPolicy struct {
	engine *Engine
}

func (p *GuardrailsPolicy) Run(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error) {
	engine := p.engine
	if engine == nil {
		engine = NewEngine()
	}
	return engine.Simulate(params, annualData)
}

func (p *GuardrailsPolicy) Name() string { return PolicyGuardrails }

// FixedPercentagePolicy withdraws the initial rate of the current balance
// every year. The withdrawal floats with the portfolio, so it never depletes
// it by itself, but the income swings with the market.
type FixedPercentagePolicy struct{}

func (FixedPercentagePolicy) Run(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error) {
	return runBaseline(params, annualData, func(startWorth, _ decimal.Decimal, _ domain.AnnualDatum) decimal.Decimal {
		return decimalutil.PercentOf(startWorth, params.InitialWithdrawalRate)
	})
}

func (FixedPercentagePolicy) Name() string { return PolicyFixedPercentage }

// InflationAdjustedPolicy is the classic fixed-real-amount rule: the first
// year's withdrawal grown by each later year's inflation, uncapped, with no
// guardrails and no freeze.
type InflationAdjustedPolicy struct{}

func (InflationAdjustedPolicy) Run(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error) {
	return runBaseline(params, annualData, func(_, lastWithdrawal decimal.Decimal, datum domain.AnnualDatum) decimal.Decimal {
		return decimalutil.ApplyPercent(lastWithdrawal, datum.InflationPercent)
	})
}

func (InflationAdjustedPolicy) Name() string { return PolicyInflationAdjusted }

// runBaseline is the shared year loop for the comparison baselines. It keeps
// the same result shape and chaining invariants as the engine: year 0 always
// withdraws the initial rate of starting assets, and a non-positive starting
// worth stops the run with ErrDegenerateState.
func runBaseline(params domain.SimulationParameters, annualData []domain.AnnualDatum, withdraw func(startWorth, lastWithdrawal decimal.Decimal, datum domain.AnnualDatum) decimal.Decimal) ([]domain.YearResult, error) {
	if err := validateInputs(params, annualData); err != nil {
		return nil, err
	}

	results := make([]domain.YearResult, 0, len(annualData))
	startWorth := params.InitialAssets
	lastWithdrawal := decimal.Zero
	for i, datum := range annualData {
		if startWorth.LessThanOrEqual(decimal.Zero) {
			return results, fmt.Errorf("portfolio worth %s entering year %d (%d): %w",
				startWorth, i, datum.Year, ErrDegenerateState)
		}

		yr := domain.YearResult{
			Year:       datum.Year,
			StartWorth: startWorth,
		}
		if i == 0 {
			yr.Rule = domain.RuleInitial
			yr.InflationApplied = decimal.Zero
			yr.PlannedWithdrawal = decimalutil.PercentOf(params.InitialAssets, params.InitialWithdrawalRate)
		} else {
			yr.Rule = domain.RuleInflation
			yr.InflationApplied = datum.InflationPercent
			yr.PlannedWithdrawal = withdraw(startWorth, lastWithdrawal, datum)
		}
		yr.PlannedRate = decimalutil.RateOf(yr.PlannedWithdrawal, startWorth)
		yr.ActualWithdrawal = yr.PlannedWithdrawal
		finalizeYear(&yr, datum)

		results = append(results, yr)
		lastWithdrawal = yr.ActualWithdrawal
		startWorth = yr.EndWorth
	}
	return results, nil
}

// Compare runs each policy over the same inputs and collects the runs in
// request order. A policy that depletes the portfolio is recorded with its
// partial results and marked Depleted; invalid input aborts the comparison.
func Compare(ctx context.Context, params domain.SimulationParameters, annualData []domain.AnnualDatum, policies []Policy) (domain.RunComparison, error) {
	comparison := domain.RunComparison{
		Parameters: params,
		Runs:       make([]domain.PolicyRun, 0, len(policies)),
	}
	for _, policy := range policies {
		if err := ctx.Err(); err != nil {
			return comparison, err
		}
		results, err := policy.Run(params, annualData)
		run := domain.PolicyRun{
			Policy:  policy.Name(),
			Results: results,
			Summary: Summarize(params, results),
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrDegenerateState):
			run.Depleted = true
		default:
			return comparison, fmt.Errorf("policy %s: %w", policy.Name(), err)
		}
		comparison.Runs = append(comparison.Runs, run)
	}
	return comparison, nil
}
