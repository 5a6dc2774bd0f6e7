package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketStartsFull(t *testing.T) {
	tb := NewTokenBucket(3, 0.0001)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestTokenBucketAllowN(t *testing.T) {
	tb := NewTokenBucket(5, 0.0001)

	assert.True(t, tb.AllowN(4))
	assert.False(t, tb.AllowN(2))
	assert.True(t, tb.AllowN(1))
}

func TestTokenBucketRefills(t *testing.T) {
	// 100 tokens/second refills a drained 1-token bucket within 50ms.
	tb := NewTokenBucket(1, 100)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(50 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucketCapsAtMax(t *testing.T) {
	tb := NewTokenBucket(2, 1000)

	time.Sleep(20 * time.Millisecond)

	// Despite the refill burst, only maxTokens are available.
	assert.True(t, tb.AllowN(2))
	assert.False(t, tb.Allow())
}
