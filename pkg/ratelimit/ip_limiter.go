package ratelimit

import (
	"sync"
	"time"
)

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	limiters   map[string]*ipBucket
	mu         sync.Mutex
	maxTokens  float64
	refillRate float64
	maxIdle    time.Duration
	cleanup    *time.Ticker
	stopChan   chan struct{}
}

type ipBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewIPRateLimiter creates a limiter giving each IP its own bucket.
func NewIPRateLimiter(maxTokens, refillRate float64) *IPRateLimiter {
	l := &IPRateLimiter{
		limiters:   make(map[string]*ipBucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		maxIdle:    30 * time.Minute,
		cleanup:    time.NewTicker(10 * time.Minute),
		stopChan:   make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipBucket{bucket: NewTokenBucket(l.maxTokens, l.refillRate)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	return entry.bucket.Allow()
}

// cleanupLoop drops buckets for IPs not seen within maxIdle.
func (l *IPRateLimiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanup.C:
			cutoff := time.Now().Add(-l.maxIdle)
			l.mu.Lock()
			for ip, entry := range l.limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(l.limiters, ip)
				}
			}
			l.mu.Unlock()
		case <-l.stopChan:
			l.cleanup.Stop()
			return
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *IPRateLimiter) Stop() {
	close(l.stopChan)
}
