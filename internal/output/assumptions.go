package output

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Withdrawals are taken at the start of each year, before market returns apply",
	"Inflation adjustments to the withdrawal are capped at 6% per year",
	"Guardrail band: the withdrawal rate may drift 20% either side of the target before a correction",
	"Guardrail corrections move the withdrawal by 10% (cut on breach above, raise on breach below)",
	"A negative-return year suppresses the next inflation increase while the rate sits above target",
}

// GenerateAssumptions builds the assumptions list with the run's actual rate band.
func GenerateAssumptions(params domain.SimulationParameters) []string {
	rate := params.InitialWithdrawalRate
	lower := rate.Mul(decimal.NewFromFloat(0.8))
	upper := rate.Mul(decimal.NewFromFloat(1.2))
	return []string{
		"Withdrawals are taken at the start of each year, before market returns apply",
		"Inflation adjustments to the withdrawal are capped at 6% per year",
		fmt.Sprintf("Guardrail band: planned rate may drift between %s and %s before a correction", FormatPercentage(lower), FormatPercentage(upper)),
		"Guardrail corrections move the withdrawal by 10% (cut on breach above, raise on breach below)",
		"A negative-return year suppresses the next inflation increase while the rate sits above target",
	}
}
