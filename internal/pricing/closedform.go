package pricing

import (
	"math"
)

// BlackScholesCall prices a European call with continuous dividend yield in
// closed form. Rates and volatility are decimals. With no time value left
// (T = 0 or σ = 0) it returns the discounted intrinsic value of the forward.
func BlackScholesCall(spot, strike, volatility, maturity, riskFreeRate, dividendYield float64) float64 {
	sigma := math.Abs(volatility)
	discountedSpot := spot * math.Exp(-dividendYield*maturity)
	discountedStrike := strike * math.Exp(-riskFreeRate*maturity)

	if maturity <= 0 || sigma == 0 || spot <= 0 || strike <= 0 {
		return math.Max(discountedSpot-discountedStrike, 0)
	}

	sqrtT := math.Sqrt(maturity)
	d1 := (math.Log(spot/strike) + (riskFreeRate-dividendYield+0.5*sigma*sigma)*maturity) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	return discountedSpot*normalCDF(d1) - discountedStrike*normalCDF(d2)
}

// normalCDF returns the cumulative distribution function of the standard normal distribution
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
