package pools

import (
	"sync"
)

// Float64SlicePool recycles float64 scratch buffers of varying length
type Float64SlicePool struct {
	pool sync.Pool
}

// NewFloat64SlicePool creates a new Float64SlicePool
func NewFloat64SlicePool() *Float64SlicePool {
	return &Float64SlicePool{}
}

// Get returns a slice of length n. Its contents are unspecified.
func (p *Float64SlicePool) Get(n int) []float64 {
	if v, ok := p.pool.Get().(*[]float64); ok && cap(*v) >= n {
		return (*v)[:n]
	}
	return make([]float64, n)
}

// Put returns a slice to the pool. The caller must not use it afterwards.
func (p *Float64SlicePool) Put(s []float64) {
	if cap(s) == 0 {
		return
	}
	s = s[:0]
	p.pool.Put(&s)
}
