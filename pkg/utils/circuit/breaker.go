package circuit

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// Config contains configuration for a circuit breaker
type Config struct {
	// Consecutive failures before the breaker opens
	MaxFailures uint32
	// Time spent open before probing again
	Timeout time.Duration
	// Requests let through while half-open
	MaxRequests uint32
}

// DefaultConfig returns the breaker settings used for downstream publishing
func DefaultConfig() Config {
	return Config{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
		MaxRequests: 1,
	}
}

// Breaker guards calls to a flaky dependency. While open, calls fail fast
// with a ResourceExhausted error instead of reaching the dependency.
type Breaker struct {
	cb  *gobreaker.CircuitBreaker
	log *logger.Logger
}

// New creates a circuit breaker
func New(name string, config Config) *Breaker {
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultConfig().MaxFailures
	}

	log := logger.GetLogger(fmt.Sprintf("circuit.%s", name))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Circuit breaker '%s' changed from %s to %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about the dependency
			return err == nil || err == context.Canceled
		},
	}

	return &Breaker{
		cb:  gobreaker.NewCircuitBreaker(settings),
		log: log,
	}
}

// Execute runs fn unless the breaker is open
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.WithType(err, errors.ErrorTypeResourceExhausted, fmt.Sprintf("circuit '%s' rejected the call", b.cb.Name()))
	}
	return err
}

// State returns the current breaker state name
func (b *Breaker) State() string {
	return b.cb.State().String()
}
