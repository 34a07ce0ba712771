package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(60, 2)
	defer limiter.Stop()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, limiter.Allow("10.0.0.2"), "clients are limited independently")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "one token refills per second at 60/min")
	assert.False(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(10, 1)
	defer limiter.Stop()
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(30 * time.Minute)
	limiter.Allow("10.0.0.2")

	now = now.Add(45 * time.Minute)
	limiter.sweep()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.clients, "10.0.0.1")
	assert.Contains(t, limiter.clients, "10.0.0.2")
}

func TestRateLimiterStopTwice(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.Stop()
	limiter.Stop()
}
