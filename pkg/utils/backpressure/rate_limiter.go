package backpressure

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// Limiter admits expensive operations at a bounded rate with a burst
// allowance. A nil *Limiter admits everything.
type Limiter struct {
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewLimiter creates a limiter allowing perSecond operations with the given
// burst. perSecond <= 0 disables limiting and returns nil.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	l := &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     logger.GetLogger("backpressure.limiter"),
	}
	l.log.Infof("Rate limiter created with rate=%.2f/s, burst=%d", perSecond, burst)

	return l
}

// Allow reports whether one operation may start now
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Wait blocks until one operation may start or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
