package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParametersFromFloats(t *testing.T) {
	params, err := ParametersFromFloats(1000000, 5, 30)
	assert.NoError(t, err)
	assert.Equal(t, 30, params.Years)
	assert.Equal(t, "1000000", params.InitialAssets.String())
	assert.Equal(t, "5", params.InitialWithdrawalRate.String())
}

func TestParametersFromFloatsRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		assets float64
		rate   float64
	}{
		{name: "NaN assets", assets: math.NaN(), rate: 5},
		{name: "positive infinity assets", assets: math.Inf(1), rate: 5},
		{name: "NaN rate", assets: 1000000, rate: math.NaN()},
		{name: "negative infinity rate", assets: 1000000, rate: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParametersFromFloats(tt.assets, tt.rate, 10)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAnnualDatumFromFloatsRejectsNonFinite(t *testing.T) {
	_, err := AnnualDatumFromFloats(1975, math.Inf(1), 2.5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AnnualDatumFromFloats(1975, 8.0, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)

	datum, err := AnnualDatumFromFloats(1975, 8.0, 2.5)
	assert.NoError(t, err)
	assert.Equal(t, 1975, datum.Year)
	assert.Equal(t, "8", datum.ReturnPercent.String())
	assert.Equal(t, "2.5", datum.InflationPercent.String())
}
