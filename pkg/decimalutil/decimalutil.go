// Package decimalutil provides small decimal helpers for percent arithmetic,
// shared by the simulation engine, dataset statistics, and presenters.
package decimalutil

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// FromFloat converts a float64 into a decimal, rejecting non-finite values.
// decimal.NewFromFloat panics on NaN and +/-Inf, so every float64 entering the
// system goes through this check.
func FromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, fmt.Errorf("non-finite value %v", v)
	}
	return decimal.NewFromFloat(v), nil
}

// GrowthFactor returns 1 + pct/100, the multiplier for a percent change.
func GrowthFactor(pct decimal.Decimal) decimal.Decimal {
	return one.Add(pct.Div(hundred))
}

// ApplyPercent grows amount by pct percent: amount * (1 + pct/100).
func ApplyPercent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(GrowthFactor(pct))
}

// PercentOf returns pct percent of amount: amount * pct/100.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// RateOf expresses part as a percentage of whole: part/whole * 100.
// whole must be non-zero; callers guard this (decimal division panics on a
// zero divisor).
func RateOf(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(hundred)
}

// ChangePercent returns the percent change from before to after:
// (after - before)/before * 100. before must be non-zero.
func ChangePercent(before, after decimal.Decimal) decimal.Decimal {
	return RateOf(after.Sub(before), before)
}

// Min returns the smaller of two decimals.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two decimals.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
