package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// SweepSpec defines an evenly spaced withdrawal-rate sweep, endpoints
// inclusive.
type SweepSpec struct {
	MinRate decimal.Decimal
	MaxRate decimal.Decimal
	Steps   int
}

// Rates expands the spec into its ascending sample points. A single step
// collapses to MinRate alone.
func (s SweepSpec) Rates() []decimal.Decimal {
	if s.Steps <= 0 {
		return nil
	}
	if s.Steps == 1 {
		return []decimal.Decimal{s.MinRate}
	}
	step := s.MaxRate.Sub(s.MinRate).Div(decimal.NewFromInt(int64(s.Steps - 1)))
	rates := make([]decimal.Decimal, s.Steps)
	for i := range rates {
		rates[i] = s.MinRate.Add(step.Mul(decimal.NewFromInt(int64(i))))
	}
	return rates
}

// SweepRates runs the guardrails simulation at every rate in the spec over
// the same annual data and returns one summary per rate, in rate order. The
// runs are independent, so they execute on a bounded worker pool; each run's
// year loop stays sequential.
func (e *Engine) SweepRates(ctx context.Context, params domain.SimulationParameters, annualData []domain.AnnualDatum, spec SweepSpec) (domain.SweepResult, error) {
	if spec.Steps < 1 || !spec.MinRate.IsPositive() || spec.MaxRate.LessThan(spec.MinRate) {
		return domain.SweepResult{}, fmt.Errorf("%w: sweep bounds min=%s max=%s steps=%d",
			ErrInvalidInput, spec.MinRate, spec.MaxRate, spec.Steps)
	}
	if err := validateInputs(params, annualData); err != nil {
		return domain.SweepResult{}, err
	}

	rates := spec.Rates()
	points := make([]domain.SweepPoint, len(rates))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10) // Limit concurrent runs

	for i, rate := range rates {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return domain.SweepResult{}, err
		}
		wg.Add(1)
		go func(idx int, rate decimal.Decimal) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			probe := params
			probe.InitialWithdrawalRate = rate
			results, err := e.Simulate(probe, annualData)
			points[idx] = domain.SweepPoint{
				Rate:     rate,
				Summary:  Summarize(probe, results),
				Depleted: errors.Is(err, ErrDegenerateState),
			}
		}(i, rate)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.SweepResult{}, err
	}
	e.Logger.Infof("sweep: %d rates from %s%% to %s%%", len(rates), spec.MinRate, spec.MaxRate)
	return domain.SweepResult{Parameters: params, Points: points}, nil
}
