package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string { return "$" + amount.StringFixed(2) }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRule returns the short display label for an adjustment rule.
func FormatRule(rule domain.Rule) string {
	switch rule {
	case domain.RuleInitial:
		return "Initial"
	case domain.RuleInflation:
		return "Inflation"
	case domain.RuleInflationFrozen:
		return "Frozen"
	case domain.RuleCapitalPreservation:
		return "Cut -10%"
	case domain.RuleProsperity:
		return "Raise +10%"
	}
	return string(rule)
}

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }
