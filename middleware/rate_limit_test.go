package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _, _ := rl.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, remaining, retryAfter := rl.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_TracksIPsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	allowed, _, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.False(t, allowed)

	allowed, _, _ = rl.Allow("10.0.0.2")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	allowed, _, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed)
}
