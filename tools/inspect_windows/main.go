package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

// Prints every rolling backtest window and then replays the worst one year
// by year, to check that the aggregate numbers match a hand-traced run.
func main() {
	window := 30
	if len(os.Args) > 1 {
		v, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Println("usage: inspect_windows [window-years]")
			return
		}
		window = v
	}

	provider := dataset.NewProvider(domain.DataConfig{Source: dataset.SourceEmbedded})
	if err := provider.Load(); err != nil {
		panic(err)
	}
	all, err := provider.AllData()
	if err != nil {
		panic(err)
	}
	params, err := simulation.ParametersFromFloats(1000000, 5, window)
	if err != nil {
		panic(err)
	}

	engine := simulation.NewEngine()
	bt, err := engine.Backtest(context.Background(), params, all, window)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s: %d windows of %d years, success rate %s%%\n\n",
		provider.Name(), bt.WindowsRun, bt.WindowYears, bt.SuccessRate.StringFixed(2))
	fmt.Println("StartYear,EndYear,Success,FinalWorth,MinWorth,MaxDrawdown,GuardrailYears")
	for _, w := range bt.Windows {
		fmt.Printf("%d,%d,%t,%s,%s,%s,%d\n", w.StartYear, w.EndYear, w.Success,
			w.Summary.FinalWorth.StringFixed(0), w.Summary.MinWorth.StringFixed(0),
			w.Summary.MaxDrawdownPercent.StringFixed(2), w.Summary.GuardrailYears)
	}

	worst := bt.WorstWindow
	fmt.Printf("\nWorst window %d-%d replayed:\n", worst.StartYear, worst.EndYear)
	windowData, err := dataset.Window(all, worst.StartYear, window)
	if err != nil {
		panic(err)
	}
	results, err := engine.Simulate(params, windowData)
	if err != nil {
		fmt.Printf("(depleted after %d years: %v)\n", len(results), err)
	}
	for _, r := range results {
		fmt.Printf("  %d: start=%s actual=%s rule=%-19s end=%s\n",
			r.Year, r.StartWorth.StringFixed(0), r.ActualWithdrawal.StringFixed(0), r.Rule, r.EndWorth.StringFixed(0))
	}
}
