package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"
)

// State of the breaker.
type State int

const (
	StateClosed   State = iota // requests flow normally
	StateHalfOpen              // probing whether the dependency recovered
	StateOpen                  // requests are rejected
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker implements a three-state circuit breaker.
type Breaker struct {
	state            int32
	failureThreshold int64
	resetTimeout     time.Duration
	halfOpenMaxCalls int64
	failureCount     int64
	halfOpenCalls    int64
	lastStateChange  time.Time
	mu               sync.RWMutex
}

// Config configures a Breaker.
type Config struct {
	FailureThreshold int64
	ResetTimeout     time.Duration
	HalfOpenMaxCalls int64
}

// New creates a closed Breaker.
func New(cfg Config) *Breaker {
	return &Breaker{
		state:            int32(StateClosed),
		failureThreshold: cfg.FailureThreshold,
		resetTimeout:     cfg.ResetTimeout,
		halfOpenMaxCalls: cfg.HalfOpenMaxCalls,
		lastStateChange:  time.Now(),
	}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	switch State(atomic.LoadInt32(&b.state)) {
	case StateClosed:
		return true
	case StateOpen:
		b.mu.RLock()
		elapsed := time.Since(b.lastStateChange)
		b.mu.RUnlock()

		if elapsed >= b.resetTimeout {
			if atomic.CompareAndSwapInt32(&b.state, int32(StateOpen), int32(StateHalfOpen)) {
				b.mu.Lock()
				b.lastStateChange = time.Now()
				atomic.StoreInt64(&b.halfOpenCalls, 0)
				b.mu.Unlock()
			}
			return b.Allow()
		}
		return false
	case StateHalfOpen:
		calls := atomic.AddInt64(&b.halfOpenCalls, 1)
		return calls <= b.halfOpenMaxCalls
	default:
		return false
	}
}

// Success records a successful call.
func (b *Breaker) Success() {
	state := State(atomic.LoadInt32(&b.state))

	switch state {
	case StateHalfOpen:
		if atomic.CompareAndSwapInt32(&b.state, int32(StateHalfOpen), int32(StateClosed)) {
			b.mu.Lock()
			b.lastStateChange = time.Now()
			atomic.StoreInt64(&b.failureCount, 0)
			b.mu.Unlock()
		}
	case StateClosed:
		atomic.StoreInt64(&b.failureCount, 0)
	}
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	state := State(atomic.LoadInt32(&b.state))

	switch state {
	case StateClosed:
		if atomic.AddInt64(&b.failureCount, 1) >= b.failureThreshold {
			if atomic.CompareAndSwapInt32(&b.state, int32(StateClosed), int32(StateOpen)) {
				b.mu.Lock()
				b.lastStateChange = time.Now()
				b.mu.Unlock()
			}
		}
	case StateHalfOpen:
		// A half-open probe failing reopens the circuit immediately.
		if atomic.CompareAndSwapInt32(&b.state, int32(StateHalfOpen), int32(StateOpen)) {
			b.mu.Lock()
			b.lastStateChange = time.Now()
			b.mu.Unlock()
		}
	}
}

// CurrentState returns the breaker's state.
func (b *Breaker) CurrentState() State {
	return State(atomic.LoadInt32(&b.state))
}
