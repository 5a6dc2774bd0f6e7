package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBreaker(resetTimeout time.Duration) *Breaker {
	return New(Config{
		FailureThreshold: 3,
		ResetTimeout:     resetTimeout,
		HalfOpenMaxCalls: 2,
	})
}

func TestBreakerStartsClosed(t *testing.T) {
	b := newTestBreaker(time.Minute)

	assert.Equal(t, StateClosed, b.CurrentState())
	assert.True(t, b.Allow())
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Failure()
	b.Failure()
	assert.Equal(t, StateClosed, b.CurrentState())

	b.Failure()
	assert.Equal(t, StateOpen, b.CurrentState())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()

	assert.Equal(t, StateClosed, b.CurrentState())
}

func TestBreakerHalfOpenAfterResetTimeout(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	b.Failure()
	b.Failure()
	b.Failure()
	assert.Equal(t, StateOpen, b.CurrentState())

	time.Sleep(20 * time.Millisecond)

	// First probes are admitted, further ones rejected.
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.CurrentState())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())
}

func TestBreakerClosesOnHalfOpenSuccess(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	b.Failure()
	b.Failure()
	b.Failure()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())

	b.Success()
	assert.Equal(t, StateClosed, b.CurrentState())
	assert.True(t, b.Allow())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	b.Failure()
	b.Failure()
	b.Failure()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())

	b.Failure()
	assert.Equal(t, StateOpen, b.CurrentState())
	assert.False(t, b.Allow())
}
