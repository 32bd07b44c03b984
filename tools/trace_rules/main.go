package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

// Traces which guardrails rule fires each year at one or two withdrawal
// rates. With two rates it also prints the cumulative withdrawal difference,
// which is the quickest way to see where the guardrail corrections diverge.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: trace_rules <rate-percent> [second-rate-percent] [years]")
		return
	}
	rateA, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil {
		panic(err)
	}
	rateB := 0.0
	if len(os.Args) > 2 {
		rateB, err = strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			panic(err)
		}
	}
	years := 30
	if len(os.Args) > 3 {
		years, err = strconv.Atoi(os.Args[3])
		if err != nil {
			panic(err)
		}
	}

	provider := dataset.NewProvider(domain.DataConfig{Source: dataset.SourceEmbedded})
	if err := provider.Load(); err != nil {
		panic(err)
	}
	data, err := provider.AnnualData(years)
	if err != nil {
		panic(err)
	}

	resultsA := run(rateA, years, data)
	var resultsB []domain.YearResult
	if rateB > 0 {
		resultsB = run(rateB, years, data)
	}

	header := "Index,Year,Return,A_Start,A_Planned,A_Actual,A_Rule"
	if resultsB != nil {
		header += ",B_Actual,B_Rule"
	}
	fmt.Println(header)
	for i, r := range resultsA {
		row := fmt.Sprintf("%d,%d,%s,%s,%s,%s,%s", i, r.Year, r.ReturnPercent.StringFixed(2),
			r.StartWorth.StringFixed(0), r.PlannedWithdrawal.StringFixed(0), r.ActualWithdrawal.StringFixed(0), r.Rule)
		if i < len(resultsB) {
			b := resultsB[i]
			row += fmt.Sprintf(",%s,%s", b.ActualWithdrawal.StringFixed(0), b.Rule)
		}
		fmt.Println(row)
	}

	printTally(fmt.Sprintf("%.2f%%", rateA), resultsA)
	if resultsB != nil {
		printTally(fmt.Sprintf("%.2f%%", rateB), resultsB)

		cumA := decimal.Zero
		cumB := decimal.Zero
		for i := 0; i < len(resultsA) && i < len(resultsB); i++ {
			cumA = cumA.Add(resultsA[i].ActualWithdrawal)
			cumB = cumB.Add(resultsB[i].ActualWithdrawal)
			fmt.Printf("Cumulative year %d: cumA=%s cumB=%s diff=%s\n",
				resultsA[i].Year, cumA.StringFixed(0), cumB.StringFixed(0), cumA.Sub(cumB).StringFixed(0))
		}
	}
}

func run(rate float64, years int, data []domain.AnnualDatum) []domain.YearResult {
	params, err := simulation.ParametersFromFloats(1000000, rate, years)
	if err != nil {
		panic(err)
	}
	results, err := simulation.NewEngine().Simulate(params, data)
	if err != nil {
		fmt.Printf("rate %.2f%%: run stopped early after %d years: %v\n", rate, len(results), err)
	}
	return results
}

func printTally(label string, results []domain.YearResult) {
	fmt.Printf("\nRule tally at %s:\n", label)
	counts := map[domain.Rule]int{}
	for _, r := range results {
		counts[r.Rule]++
	}
	for _, rule := range domain.AllRules() {
		if counts[rule] > 0 {
			fmt.Printf("  %-20s %d\n", rule, counts[rule])
		}
	}
	if len(results) > 0 {
		fmt.Printf("  final worth: %s\n", results[len(results)-1].EndWorth.StringFixed(0))
	}
}
