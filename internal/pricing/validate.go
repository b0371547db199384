package pricing

import (
	"fmt"
	"math"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

// DefaultMaxPaths bounds the per-tuple path count. The detailed collection alone
// retains 27·nPaths float64 values, so 5M paths is roughly 1 GiB of samples.
const DefaultMaxPaths = 5_000_000

// DefaultMaxRows bounds 25·len(maturities)·len(strikes). The row table is
// allocated up front, at roughly 90 bytes per row.
const DefaultMaxRows = 1_000_000

// Limits caps the size of a run. A non-positive field disables its check.
type Limits struct {
	MaxPaths int
	MaxRows  int
}

// DefaultLimits returns the limits used when the engine is not configured
func DefaultLimits() Limits {
	return Limits{MaxPaths: DefaultMaxPaths, MaxRows: DefaultMaxRows}
}

// ValidateParameters rejects inputs the engine cannot run on. It is called
// before any simulation work or allocation starts.
func ValidateParameters(p models.SimulationParameters, limits Limits) error {
	if p.Paths <= 0 {
		return errors.InvalidArgumentf("n_paths must be positive, got %d", p.Paths)
	}
	if limits.MaxPaths > 0 && p.Paths > limits.MaxPaths {
		return errors.ResourceExhausted(
			fmt.Sprintf("n_paths %d exceeds the supported maximum of %d", p.Paths, limits.MaxPaths))
	}
	if len(p.Maturities) == 0 {
		return errors.InvalidArgument("at least one maturity is required")
	}
	if len(p.Strikes) == 0 {
		return errors.InvalidArgument("at least one strike is required")
	}
	if limits.MaxRows > 0 {
		// divide rather than multiply so huge lists cannot overflow
		tuples := p.Tuples()
		if tuples > limits.MaxRows || len(p.Strikes) > limits.MaxRows/tuples {
			return errors.ResourceExhausted(fmt.Sprintf(
				"%d maturities x %d strikes exceeds the supported maximum of %d rows",
				len(p.Maturities), len(p.Strikes), limits.MaxRows))
		}
	}

	scalars := []struct {
		name  string
		value float64
	}{
		{"r", p.RiskFreeRate},
		{"q", p.DividendYield},
		{"s0", p.Spot},
		{"s0_step", p.SpotStep},
		{"vol", p.Volatility},
		{"vol_step", p.VolStep},
	}
	for _, s := range scalars {
		if !isFinite(s.value) {
			return errors.InvalidArgumentf("%s must be finite, got %g", s.name, s.value)
		}
	}

	for i, t := range p.Maturities {
		if !isFinite(t) {
			return errors.InvalidArgumentf("maturities[%d] must be finite, got %g", i, t)
		}
		if t < 0 {
			return errors.InvalidArgumentf("maturities[%d] must not be negative, got %g", i, t)
		}
	}
	for i, k := range p.Strikes {
		if !isFinite(k) {
			return errors.InvalidArgumentf("strikes[%d] must be finite, got %g", i, k)
		}
	}

	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
