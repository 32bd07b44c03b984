package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// SolverSpec bounds the sustainable-rate search.
type SolverSpec struct {
	MinRate       decimal.Decimal
	MaxRate       decimal.Decimal
	TargetFloor   decimal.Decimal // minimum acceptable final worth
	Tolerance     decimal.Decimal // rate convergence tolerance, percentage points
	MaxIterations int
}

// DefaultSolverSpec returns the search bounds used when the caller does not
// override them: 0.1% to 20%, a zero floor, and convergence to 0.01 points.
func DefaultSolverSpec() SolverSpec {
	return SolverSpec{
		MinRate:       decimal.NewFromFloat(0.1),
		MaxRate:       decimal.NewFromFloat(20),
		TargetFloor:   decimal.Zero,
		Tolerance:     decimal.NewFromFloat(0.01),
		MaxIterations: 50,
	}
}

// SolveMaxRate binary-searches the highest initial withdrawal rate whose
// guardrails run survives every year of the annual data and ends with a
// final worth at or above the target floor. The returned summary is the run
// at the solved rate.
func (e *Engine) SolveMaxRate(ctx context.Context, params domain.SimulationParameters, annualData []domain.AnnualDatum, spec SolverSpec) (domain.SolverResult, error) {
	if spec.MaxIterations <= 0 || !spec.Tolerance.IsPositive() || !spec.MinRate.IsPositive() || spec.MaxRate.LessThanOrEqual(spec.MinRate) {
		return domain.SolverResult{}, fmt.Errorf("%w: solver bounds min=%s max=%s tolerance=%s iterations=%d",
			ErrInvalidInput, spec.MinRate, spec.MaxRate, spec.Tolerance, spec.MaxIterations)
	}

	iterations := 0
	feasible := func(rate decimal.Decimal) (bool, []domain.YearResult, error) {
		iterations++
		probe := params
		probe.InitialWithdrawalRate = rate
		results, err := e.Simulate(probe, annualData)
		switch {
		case err == nil:
			final := results[len(results)-1].EndWorth
			return final.GreaterThanOrEqual(spec.TargetFloor), results, nil
		case errors.Is(err, ErrDegenerateState):
			return false, nil, nil
		default:
			return false, nil, err
		}
	}

	// The whole band may already be sustainable, or none of it.
	okMax, maxResults, err := feasible(spec.MaxRate)
	if err != nil {
		return domain.SolverResult{}, err
	}
	if okMax {
		probe := params
		probe.InitialWithdrawalRate = spec.MaxRate
		return domain.SolverResult{
			Rate:       spec.MaxRate,
			Iterations: iterations,
			Converged:  true,
			Summary:    Summarize(probe, maxResults),
		}, nil
	}
	okMin, minResults, err := feasible(spec.MinRate)
	if err != nil {
		return domain.SolverResult{}, err
	}
	if !okMin {
		return domain.SolverResult{Iterations: iterations}, fmt.Errorf("no sustainable rate at or above %s%% for floor %s",
			spec.MinRate, spec.TargetFloor)
	}

	low := spec.MinRate  // highest rate known to be sustainable
	high := spec.MaxRate // lowest rate known to fail
	lowResults := minResults
	two := decimal.NewFromInt(2)
	for i := 0; i < spec.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return domain.SolverResult{}, err
		}
		if high.Sub(low).LessThanOrEqual(spec.Tolerance) {
			break
		}
		mid := low.Add(high).Div(two)
		ok, results, err := feasible(mid)
		if err != nil {
			return domain.SolverResult{}, err
		}
		if ok {
			low = mid
			lowResults = results
		} else {
			high = mid
		}
	}

	probe := params
	probe.InitialWithdrawalRate = low
	e.Logger.Infof("solver: max sustainable rate %s%% after %d runs", low.StringFixed(3), iterations)
	return domain.SolverResult{
		Rate:       low,
		Iterations: iterations,
		Converged:  high.Sub(low).LessThanOrEqual(spec.Tolerance),
		Summary:    Summarize(probe, lowResults),
	}, nil
}
