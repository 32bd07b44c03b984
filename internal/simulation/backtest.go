package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// Backtest runs the guardrails simulation over every contiguous window of
// the annual data, stride 1, and aggregates the outcomes. Windows are
// independent runs, so they execute on a bounded worker pool; results come
// back ordered by window start regardless of scheduling.
func (e *Engine) Backtest(ctx context.Context, params domain.SimulationParameters, annualData []domain.AnnualDatum, windowYears int) (domain.BacktestResult, error) {
	if windowYears < 1 {
		return domain.BacktestResult{}, fmt.Errorf("%w: window must be at least 1 year, got %d", ErrInvalidInput, windowYears)
	}
	if len(annualData) < windowYears {
		return domain.BacktestResult{}, fmt.Errorf("%w: dataset has %d years, window needs %d", ErrInvalidInput, len(annualData), windowYears)
	}

	windowParams := params
	windowParams.Years = windowYears

	n := len(annualData) - windowYears + 1
	outcomes := make([]domain.WindowOutcome, n)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10) // Limit concurrent windows

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return domain.BacktestResult{}, err
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			window := annualData[idx : idx+windowYears]
			results, err := e.Simulate(windowParams, window)
			outcome := domain.WindowOutcome{
				StartYear:     window[0].Year,
				EndYear:       window[windowYears-1].Year,
				Success:       err == nil,
				DepletionYear: -1,
				Summary:       Summarize(windowParams, results),
			}
			if errors.Is(err, ErrDegenerateState) {
				outcome.DepletionYear = len(results)
			}
			outcomes[idx] = outcome
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.BacktestResult{}, err
	}

	result := domain.BacktestResult{
		Parameters:  params,
		WindowYears: windowYears,
		WindowsRun:  n,
		Windows:     outcomes,
		BestWindow:  outcomes[0],
		WorstWindow: outcomes[0],
	}
	successes := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			successes++
		} else {
			if result.DepletionCounts == nil {
				result.DepletionCounts = make(map[int]int)
			}
			result.DepletionCounts[outcome.DepletionYear]++
		}
		if outcome.Summary.FinalWorth.GreaterThan(result.BestWindow.Summary.FinalWorth) {
			result.BestWindow = outcome
		}
		if outcome.Summary.FinalWorth.LessThan(result.WorstWindow.Summary.FinalWorth) {
			result.WorstWindow = outcome
		}
	}
	result.SuccessRate = decimalutil.RateOf(decimal.NewFromInt(int64(successes)), decimal.NewFromInt(int64(n)))

	e.Logger.Infof("backtest: %d windows of %d years, success rate %s%%",
		n, windowYears, result.SuccessRate.StringFixed(1))
	return result, nil
}
