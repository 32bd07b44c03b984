//go:build unit

package output

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

func TestFormatCurrency(t *testing.T) {
	v := decimal.NewFromFloat(1234.567)
	got := FormatCurrency(v)
	want := "$1234.57"
	if got != want {
		t.Errorf("FormatCurrency(%v) = %q, want %q", v, got, want)
	}
}

func TestFormatPercentage(t *testing.T) {
	v := decimal.NewFromFloat(12.3456)
	got := FormatPercentage(v)
	want := "12.35%"
	if got != want {
		t.Errorf("FormatPercentage(%v) = %q, want %q", v, got, want)
	}
}

func TestFormatRule(t *testing.T) {
	cases := []struct {
		rule domain.Rule
		want string
	}{
		{domain.RuleInitial, "Initial"},
		{domain.RuleInflation, "Inflation"},
		{domain.RuleInflationFrozen, "Frozen"},
		{domain.RuleCapitalPreservation, "Cut -10%"},
		{domain.RuleProsperity, "Raise +10%"},
		{domain.Rule("Mystery"), "Mystery"},
	}
	for _, tc := range cases {
		if got := FormatRule(tc.rule); got != tc.want {
			t.Errorf("FormatRule(%q) = %q, want %q", tc.rule, got, tc.want)
		}
	}
}
