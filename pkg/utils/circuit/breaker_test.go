package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, Timeout: time.Hour, MaxRequests: 1})
	failing := errors.New("down")
	calls := 0
	fn := func(context.Context) error {
		calls++
		return failing
	}

	assert.ErrorIs(t, b.Execute(context.Background(), fn), failing)
	assert.ErrorIs(t, b.Execute(context.Background(), fn), failing)
	assert.Equal(t, "open", b.State())

	err := b.Execute(context.Background(), fn)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeResourceExhausted))
	assert.Equal(t, 2, calls)
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	b := New("recover", Config{MaxFailures: 1, Timeout: 20 * time.Millisecond, MaxRequests: 1})

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)
	assert.NoError(t, b.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := New("cancel", Config{MaxFailures: 1, Timeout: time.Hour})

	err := b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}
