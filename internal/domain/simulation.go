package domain

import (
	"github.com/shopspring/decimal"
)

// Rule identifies which adjustment rule produced a year's actual withdrawal.
// Exactly one rule applies per simulated year.
type Rule string

const (
	// RuleInitial marks the first simulated year; the withdrawal is the
	// initial rate applied to starting assets, with no adjustments.
	RuleInitial Rule = "Initial"
	// RuleInflation marks an ordinary year where the prior withdrawal was
	// increased by (capped) inflation.
	RuleInflation Rule = "Inflation"
	// RuleInflationFrozen marks a year where the inflation increase was
	// suppressed after a negative-return year pushed the rate above target.
	RuleInflationFrozen Rule = "InflationFrozen"
	// RuleCapitalPreservation marks a year where the planned rate breached
	// the upper threshold and the withdrawal was cut by 10%.
	RuleCapitalPreservation Rule = "CapitalPreservation"
	// RuleProsperity marks a year where the planned rate fell below the
	// lower threshold and the withdrawal was raised by 10%.
	RuleProsperity Rule = "Prosperity"
)

// AllRules returns the closed rule set in display order.
func AllRules() []Rule {
	return []Rule{RuleInitial, RuleInflation, RuleInflationFrozen, RuleCapitalPreservation, RuleProsperity}
}

// IsValid reports whether r is one of the five known rules.
func (r Rule) IsValid() bool {
	switch r {
	case RuleInitial, RuleInflation, RuleInflationFrozen, RuleCapitalPreservation, RuleProsperity:
		return true
	}
	return false
}

// IsGuardrail reports whether r is one of the two guardrail corrections.
func (r Rule) IsGuardrail() bool {
	return r == RuleCapitalPreservation || r == RuleProsperity
}

// SimulationParameters holds the inputs that stay fixed for a whole run.
type SimulationParameters struct {
	// InitialAssets is the portfolio value entering the first year. Must be positive.
	InitialAssets decimal.Decimal `json:"initial_assets"`
	// InitialWithdrawalRate is the target withdrawal rate in percent
	// (5.0 means 5%). It fixes the guardrail band for the whole run.
	InitialWithdrawalRate decimal.Decimal `json:"initial_withdrawal_rate"`
	// Years is the number of simulated periods; must equal the length of
	// the annual data sequence.
	Years int `json:"years"`
}

// AnnualDatum is one year's market input. The Year label is carried through
// for display only and has no arithmetic role; labels need not be contiguous.
type AnnualDatum struct {
	Year             int             `json:"year"`
	ReturnPercent    decimal.Decimal `json:"return_percent"`
	InflationPercent decimal.Decimal `json:"inflation_percent"`
}

// YearResult is one simulated year's outcome. Results are causally chained:
// entry i derives from entry i-1's EndWorth and nothing else besides its own
// AnnualDatum.
type YearResult struct {
	Year             int             `json:"year"`
	StartWorth       decimal.Decimal `json:"start_worth"`
	InflationApplied decimal.Decimal `json:"inflation_applied"`

	// Planned values are the inflation-adjusted withdrawal before any
	// guardrail correction.
	PlannedWithdrawal decimal.Decimal `json:"planned_withdrawal"`
	PlannedRate       decimal.Decimal `json:"planned_rate"`

	Rule Rule `json:"rule"`

	// Actual values are what is withdrawn after guardrail correction; the
	// actual withdrawal is the only amount that compounds forward.
	ActualWithdrawal decimal.Decimal `json:"actual_withdrawal"`
	ActualRate       decimal.Decimal `json:"actual_rate"`

	PostWithdrawalBalance decimal.Decimal `json:"post_withdrawal_balance"`
	ReturnPercent         decimal.Decimal `json:"return_percent"`
	EndWorth              decimal.Decimal `json:"end_worth"`
}

// WithdrawalAdjustment returns the signed guardrail correction for the year
// (actual minus planned); zero when no guardrail fired.
func (yr *YearResult) WithdrawalAdjustment() decimal.Decimal {
	return yr.ActualWithdrawal.Sub(yr.PlannedWithdrawal)
}

// WorthChange returns the year-over-year portfolio change (EndWorth minus StartWorth).
func (yr *YearResult) WorthChange() decimal.Decimal {
	return yr.EndWorth.Sub(yr.StartWorth)
}
