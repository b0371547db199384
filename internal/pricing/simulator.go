package pricing

import (
	"math"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

// PathInput describes one (spot, vol, maturity) tuple to simulate.
// Rates are decimals.
type PathInput struct {
	Spot          float64
	Volatility    float64
	Maturity      float64
	RiskFreeRate  float64
	DividendYield float64
}

// SimulateTerminalPrices draws n terminal prices under risk-neutral GBM:
// S·exp((r − q − σ²/2)·T + σ·√T·z). With T = 0 every entry equals the spot.
func SimulateTerminalPrices(sampler *GaussianSampler, in PathInput, n int) ([]float64, error) {
	if n < 0 {
		return nil, errors.InvalidArgumentf("path count must not be negative, got %d", n)
	}

	prices := make([]float64, n)
	if err := SimulateTerminalPricesInto(sampler, in, prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// SimulateTerminalPricesInto fills dst with len(dst) terminal prices
func SimulateTerminalPricesInto(sampler *GaussianSampler, in PathInput, dst []float64) error {
	if in.Maturity < 0 {
		return errors.InvalidArgumentf("maturity must not be negative, got %g", in.Maturity)
	}

	drift := (in.RiskFreeRate - in.DividendYield - 0.5*in.Volatility*in.Volatility) * in.Maturity
	diffusion := in.Volatility * math.Sqrt(in.Maturity)

	for i := range dst {
		z := sampler.Next()
		dst[i] = in.Spot * math.Exp(drift+diffusion*z)
	}

	return nil
}
