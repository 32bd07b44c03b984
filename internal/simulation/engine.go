package simulation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

var (
	// inflationCapPercent caps the annual inflation increase applied to a
	// withdrawal, regardless of actual inflation.
	inflationCapPercent = decimal.NewFromFloat(6.0)

	// capitalPreservationBand stretches the initial rate to the threshold
	// above which the withdrawal is cut; prosperityBand shrinks it to the
	// threshold below which the withdrawal is raised.
	capitalPreservationBand = decimal.NewFromFloat(1.2)
	prosperityBand          = decimal.NewFromFloat(0.8)

	// capitalPreservationCut and prosperityRaise are the exact correction
	// factors applied to the planned withdrawal when a guardrail fires.
	capitalPreservationCut = decimal.NewFromFloat(0.9)
	prosperityRaise        = decimal.NewFromFloat(1.1)
)

// guardrails holds the two withdrawal-rate thresholds, fixed for a whole run
// from the initial withdrawal rate.
type guardrails struct {
	capitalPreservation decimal.Decimal // planned rate above this cuts the withdrawal 10%
	prosperity          decimal.Decimal // planned rate below this raises the withdrawal 10%
}

func newGuardrails(initialRate decimal.Decimal) guardrails {
	return guardrails{
		capitalPreservation: initialRate.Mul(capitalPreservationBand),
		prosperity:          initialRate.Mul(prosperityBand),
	}
}

// yearState is the state carried across the year boundary. Nothing else
// crosses it: each year derives from the previous actual withdrawal, the
// previous year's return, and the current starting worth.
type yearState struct {
	lastActualWithdrawal decimal.Decimal
	previousReturn       decimal.Decimal
}

// Engine runs guardrails withdrawal simulations.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Simulate runs the guardrails withdrawal simulation over the annual data and
// returns one result per year. It is deterministic and leaves the inputs
// untouched.
//
// The first year withdraws the initial rate applied to starting assets, with
// no adjustments. Every later year starts from the previous year's ending
// worth, grows the previous withdrawal by capped inflation, applies the
// inflation-freeze rule, then the capital-preservation and prosperity
// guardrails, and finally compounds the remaining balance by the year's
// return.
//
// On ErrDegenerateState the results of the years completed before the
// failure are returned alongside the error; on ErrInvalidInput no results
// are returned.
func (e *Engine) Simulate(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error) {
	if err := validateInputs(params, annualData); err != nil {
		return nil, err
	}

	rails := newGuardrails(params.InitialWithdrawalRate)
	state := yearState{
		lastActualWithdrawal: decimalutil.PercentOf(params.InitialAssets, params.InitialWithdrawalRate),
	}
	e.Logger.Debugf("simulate: years=%d initial=%s rate=%s%% rails=[%s, %s]",
		params.Years, params.InitialAssets, params.InitialWithdrawalRate,
		rails.prosperity, rails.capitalPreservation)

	results := make([]domain.YearResult, 0, len(annualData))
	startWorth := params.InitialAssets
	for i, datum := range annualData {
		if startWorth.LessThanOrEqual(decimal.Zero) {
			e.Logger.Warnf("simulate: portfolio depleted entering year %d (%d), start worth %s",
				i, datum.Year, startWorth)
			return results, fmt.Errorf("portfolio worth %s entering year %d (%d): %w",
				startWorth, i, datum.Year, ErrDegenerateState)
		}

		var yr domain.YearResult
		if i == 0 {
			yr = initialYear(startWorth, datum, state)
		} else {
			yr = e.adjustedYear(startWorth, datum, state, params.InitialWithdrawalRate, rails)
		}
		finalizeYear(&yr, datum)

		results = append(results, yr)
		state = yearState{
			lastActualWithdrawal: yr.ActualWithdrawal,
			previousReturn:       datum.ReturnPercent,
		}
		startWorth = yr.EndWorth
	}

	return results, nil
}

// initialYear builds the first year's result: the initial withdrawal with no
// inflation adjustment and no guardrail evaluation.
func initialYear(startWorth decimal.Decimal, datum domain.AnnualDatum, state yearState) domain.YearResult {
	return domain.YearResult{
		Year:              datum.Year,
		StartWorth:        startWorth,
		InflationApplied:  decimal.Zero,
		PlannedWithdrawal: state.lastActualWithdrawal,
		PlannedRate:       decimalutil.RateOf(state.lastActualWithdrawal, startWorth),
		Rule:              domain.RuleInitial,
		ActualWithdrawal:  state.lastActualWithdrawal,
	}
}

// adjustedYear builds a later year's result: inflation adjustment (capped at
// 6% and frozen after a losing year that pushed the rate above target),
// followed by the mutually exclusive guardrail corrections.
func (e *Engine) adjustedYear(startWorth decimal.Decimal, datum domain.AnnualDatum, state yearState, initialRate decimal.Decimal, rails guardrails) domain.YearResult {
	cappedInflation := decimalutil.Min(datum.InflationPercent, inflationCapPercent)
	withInflation := decimalutil.ApplyPercent(state.lastActualWithdrawal, cappedInflation)
	rateWithInflation := decimalutil.RateOf(withInflation, startWorth)

	yr := domain.YearResult{
		Year:             datum.Year,
		StartWorth:       startWorth,
		InflationApplied: datum.InflationPercent,
	}

	// Freeze the inflation increase after a negative-return year whenever the
	// increased rate would exceed the initial target rate.
	if state.previousReturn.IsNegative() && rateWithInflation.GreaterThan(initialRate) {
		yr.PlannedWithdrawal = state.lastActualWithdrawal
		yr.Rule = domain.RuleInflationFrozen
	} else {
		yr.PlannedWithdrawal = withInflation
		yr.Rule = domain.RuleInflation
	}

	yr.PlannedRate = decimalutil.RateOf(yr.PlannedWithdrawal, startWorth)
	yr.ActualWithdrawal = yr.PlannedWithdrawal

	// Guardrails are mutually exclusive; the capital-preservation check wins
	// when both could apply.
	switch {
	case yr.PlannedRate.GreaterThan(rails.capitalPreservation):
		yr.Rule = domain.RuleCapitalPreservation
		yr.ActualWithdrawal = yr.PlannedWithdrawal.Mul(capitalPreservationCut)
		e.Logger.Debugf("year %d: capital preservation, planned rate %s%% cut to %s",
			datum.Year, yr.PlannedRate.StringFixed(2), yr.ActualWithdrawal.StringFixed(2))
	case yr.PlannedRate.LessThan(rails.prosperity):
		yr.Rule = domain.RuleProsperity
		yr.ActualWithdrawal = yr.PlannedWithdrawal.Mul(prosperityRaise)
		e.Logger.Debugf("year %d: prosperity, planned rate %s%% raised to %s",
			datum.Year, yr.PlannedRate.StringFixed(2), yr.ActualWithdrawal.StringFixed(2))
	}

	return yr
}

// finalizeYear fills the fields common to every year: the actual rate, the
// balance after withdrawal, and the ending worth after compounding.
func finalizeYear(yr *domain.YearResult, datum domain.AnnualDatum) {
	yr.ActualRate = decimalutil.RateOf(yr.ActualWithdrawal, yr.StartWorth)
	yr.PostWithdrawalBalance = yr.StartWorth.Sub(yr.ActualWithdrawal)
	yr.ReturnPercent = datum.ReturnPercent
	yr.EndWorth = decimalutil.ApplyPercent(yr.PostWithdrawalBalance, datum.ReturnPercent)
}

func validateInputs(params domain.SimulationParameters, annualData []domain.AnnualDatum) error {
	if params.Years < 1 {
		return fmt.Errorf("%w: years must be at least 1, got %d", ErrInvalidInput, params.Years)
	}
	if len(annualData) != params.Years {
		return fmt.Errorf("%w: annual data has %d entries for %d years", ErrInvalidInput, len(annualData), params.Years)
	}
	return nil
}

// Simulate runs a single simulation with a default engine. It is the
// package-level convenience entry point for callers that need no logging.
func Simulate(params domain.SimulationParameters, annualData []domain.AnnualDatum) ([]domain.YearResult, error) {
	return NewEngine().Simulate(params, annualData)
}
