package pricing

import (
	"math"
	"sort"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
)

// Summarize computes descriptive statistics of a terminal-price sample.
// forward is the analytic expectation the sample should centre on.
func Summarize(sample []float64, forward float64) models.DistributionSummary {
	summary := models.DistributionSummary{
		Count:   len(sample),
		Forward: forward,
	}
	if len(sample) == 0 {
		return summary
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	summary.Mean, summary.StdDev = meanAndStdDev(sorted)
	summary.Min = sorted[0]
	summary.Max = sorted[len(sorted)-1]
	summary.P01 = quantile(sorted, 0.01)
	summary.P05 = quantile(sorted, 0.05)
	summary.P50 = quantile(sorted, 0.50)
	summary.P95 = quantile(sorted, 0.95)
	summary.P99 = quantile(sorted, 0.99)

	return summary
}

// meanAndStdDev returns the mean and the sample standard deviation
func meanAndStdDev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values) - 1)

	return mean, math.Sqrt(variance)
}

// quantile interpolates linearly between the closest ranks of a sorted sample
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
