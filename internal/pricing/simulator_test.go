package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

func TestSimulateTerminalPricesZeroMaturity(t *testing.T) {
	for _, sigma := range []float64{0, 0.2, 1.5} {
		in := PathInput{Spot: 50000, Volatility: sigma, RiskFreeRate: 0.03, DividendYield: 0.01}
		prices, err := SimulateTerminalPrices(NewStreamSampler(1, 1), in, 1000)
		require.NoError(t, err)
		require.Len(t, prices, 1000)

		for _, p := range prices {
			assert.Equal(t, 50000.0, p)
		}
	}
}

func TestSimulateTerminalPricesEmpty(t *testing.T) {
	prices, err := SimulateTerminalPrices(NewStreamSampler(1, 1), PathInput{Spot: 100, Volatility: 0.2, Maturity: 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestSimulateTerminalPricesRejectsBadInput(t *testing.T) {
	_, err := SimulateTerminalPrices(NewStreamSampler(1, 1), PathInput{Spot: 100, Maturity: 1}, -1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))

	_, err = SimulateTerminalPrices(NewStreamSampler(1, 1), PathInput{Spot: 100, Maturity: -1}, 10)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestSimulateTerminalPricesMatchesForward(t *testing.T) {
	in := PathInput{Spot: 100, Volatility: 0.25, Maturity: 2, RiskFreeRate: 0.05, DividendYield: 0.02}
	const n = 200000

	prices, err := SimulateTerminalPrices(NewStreamSampler(99, 3), in, n)
	require.NoError(t, err)

	var sum, logSum float64
	for _, p := range prices {
		require.Greater(t, p, 0.0)
		sum += p
		logSum += math.Log(p / in.Spot)
	}

	forward := in.Spot * math.Exp((in.RiskFreeRate-in.DividendYield)*in.Maturity)
	assert.InEpsilon(t, forward, sum/n, 0.005)

	logDrift := (in.RiskFreeRate - in.DividendYield - 0.5*in.Volatility*in.Volatility) * in.Maturity
	assert.InDelta(t, logDrift, logSum/n, 0.005)
}

func TestSimulateTerminalPricesZeroVolatilityIsDeterministic(t *testing.T) {
	in := PathInput{Spot: 80, Volatility: 0, Maturity: 3, RiskFreeRate: 0.04}
	prices, err := SimulateTerminalPrices(NewStreamSampler(5, 5), in, 50)
	require.NoError(t, err)

	expected := 80 * math.Exp(0.04*3)
	for _, p := range prices {
		assert.InDelta(t, expected, p, 1e-9)
	}
}
