package simulation

import (
	"fmt"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// ParametersFromFloats builds run parameters from boundary float64 inputs.
// Non-finite values are rejected here so the decimal core never sees them.
func ParametersFromFloats(initialAssets, initialWithdrawalRate float64, years int) (domain.SimulationParameters, error) {
	assets, err := decimalutil.FromFloat(initialAssets)
	if err != nil {
		return domain.SimulationParameters{}, fmt.Errorf("%w: initial assets: %v", ErrInvalidInput, err)
	}
	rate, err := decimalutil.FromFloat(initialWithdrawalRate)
	if err != nil {
		return domain.SimulationParameters{}, fmt.Errorf("%w: initial withdrawal rate: %v", ErrInvalidInput, err)
	}
	return domain.SimulationParameters{
		InitialAssets:         assets,
		InitialWithdrawalRate: rate,
		Years:                 years,
	}, nil
}

// AnnualDatumFromFloats builds one year's market input from boundary float64
// values, rejecting non-finite numbers.
func AnnualDatumFromFloats(year int, returnPercent, inflationPercent float64) (domain.AnnualDatum, error) {
	ret, err := decimalutil.FromFloat(returnPercent)
	if err != nil {
		return domain.AnnualDatum{}, fmt.Errorf("%w: year %d return: %v", ErrInvalidInput, year, err)
	}
	infl, err := decimalutil.FromFloat(inflationPercent)
	if err != nil {
		return domain.AnnualDatum{}, fmt.Errorf("%w: year %d inflation: %v", ErrInvalidInput, year, err)
	}
	return domain.AnnualDatum{Year: year, ReturnPercent: ret, InflationPercent: infl}, nil
}
