package pricing

import (
	"math"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

// Valuation is the Monte Carlo estimate of a European call
type Valuation struct {
	Price    float64
	StdError float64
}

// ValueCall discounts the average call payoff over the terminal-price sample.
// The standard error is the sample standard deviation of the discounted
// payoffs over √N, zero for a single path.
func ValueCall(terminal []float64, strike, maturity, riskFreeRate float64) (Valuation, error) {
	n := len(terminal)
	if n == 0 {
		return Valuation{}, errors.InvalidArgument("cannot value a call on an empty sample")
	}

	discount := math.Exp(-riskFreeRate * maturity)

	// Welford keeps the variance stable for large samples
	var mean, m2 float64
	for i, s := range terminal {
		payoff := discount * math.Max(s-strike, 0)
		delta := payoff - mean
		mean += delta / float64(i+1)
		m2 += delta * (payoff - mean)
	}

	v := Valuation{Price: mean}
	if n > 1 {
		v.StdError = math.Sqrt(m2/float64(n-1)) / math.Sqrt(float64(n))
	}
	return v, nil
}
