package pricing

import (
	"math"
	"math/rand/v2"
)

// GaussianSampler draws standard normal values with the Box-Muller transform
type GaussianSampler struct {
	rng *rand.Rand
}

// NewGaussianSampler creates a sampler on an explicit uniform source
func NewGaussianSampler(src rand.Source) *GaussianSampler {
	return &GaussianSampler{rng: rand.New(src)}
}

// NewStreamSampler creates a sampler on the PCG stream identified by (seed, stream).
// Distinct stream numbers under one seed give independent sequences.
func NewStreamSampler(seed, stream uint64) *GaussianSampler {
	return NewGaussianSampler(rand.NewPCG(seed, stream))
}

// Next returns one standard normal draw, consuming two uniform draws
func (g *GaussianSampler) Next() float64 {
	u := g.rng.Float64()
	// ln(0) is undefined
	for u == 0 {
		u = g.rng.Float64()
	}
	v := g.rng.Float64()

	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}
