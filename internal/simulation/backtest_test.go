package simulation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBacktestRollingWindows(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 30)
	data := []domain.AnnualDatum{
		testDatum(2000, 8, 2),
		testDatum(2001, 6, 2),
		testDatum(2002, 7, 2),
		testDatum(2003, 9, 2),
		testDatum(2004, 10, 2),
		testDatum(2005, 5, 2),
	}

	result, err := engine.Backtest(context.Background(), params, data, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.WindowYears)
	assert.Equal(t, 3, result.WindowsRun)
	assert.Len(t, result.Windows, 3)

	for i, window := range result.Windows {
		assert.Equal(t, 2000+i, window.StartYear, "windows must come back in start order")
		assert.Equal(t, 2003+i, window.EndYear)
		assert.True(t, window.Success)
		assert.Equal(t, -1, window.DepletionYear)
		assert.True(t, window.Summary.FinalWorth.IsPositive())
	}

	assert.True(t, result.SuccessRate.Equal(decimal.NewFromInt(100)),
		"success rate: expected 100.00, got %s", result.SuccessRate.StringFixed(2))
	assert.Nil(t, result.DepletionCounts)
	assert.True(t, result.BestWindow.Summary.FinalWorth.GreaterThanOrEqual(result.WorstWindow.Summary.FinalWorth))
}

// TestBacktestDepletion places a total-loss year in the middle of the series
// and checks window classification around it: a window that merely ends at
// zero still succeeds, while any window that must start a year at zero fails
// with the survived-year count recorded.
func TestBacktestDepletion(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 30)
	data := []domain.AnnualDatum{
		testDatum(2000, 8, 2),
		testDatum(2001, 6, 2),
		testDatum(2002, -100, 2),
		testDatum(2003, 7, 2),
		testDatum(2004, 9, 2),
		testDatum(2005, 10, 2),
	}

	result, err := engine.Backtest(context.Background(), params, data, 3)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.WindowsRun)

	// 2000-2002 survives to a zero final worth; 2003-2005 never sees the crash.
	assert.True(t, result.Windows[0].Success)
	assert.True(t, result.Windows[0].Summary.FinalWorth.IsZero())
	assert.True(t, result.Windows[3].Success)

	// 2001-2003 completes two years, 2002-2004 completes one.
	assert.False(t, result.Windows[1].Success)
	assert.Equal(t, 2, result.Windows[1].DepletionYear)
	assert.False(t, result.Windows[2].Success)
	assert.Equal(t, 1, result.Windows[2].DepletionYear)

	assert.True(t, result.SuccessRate.Equal(decimal.NewFromInt(50)),
		"success rate: expected 50.00, got %s", result.SuccessRate.StringFixed(2))
	assert.Equal(t, map[int]int{1: 1, 2: 1}, result.DepletionCounts)
	assert.Equal(t, 2003, result.BestWindow.StartYear)
	assert.True(t, result.WorstWindow.Summary.FinalWorth.IsZero())
}

func TestBacktestInvalidWindow(t *testing.T) {
	engine := NewEngine()
	params := testParams(1000000, 5, 30)
	data := flatData(2020, 5)

	_, err := engine.Backtest(context.Background(), params, data, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = engine.Backtest(context.Background(), params, data, 6)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBacktestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine()
	params := testParams(1000000, 5, 30)
	data := flatData(2010, 10)

	_, err := engine.Backtest(ctx, params, data, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
