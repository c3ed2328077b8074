package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	now := time.Now()

	assert.True(t, l.allowAt("a", now))
	assert.True(t, l.allowAt("a", now))
	assert.True(t, l.allowAt("a", now))
	assert.False(t, l.allowAt("a", now))
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	now := time.Now()

	assert.True(t, l.allowAt("a", now))
	assert.False(t, l.allowAt("a", now))
	assert.True(t, l.allowAt("b", now))
}

func TestWindowRollover(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	now := time.Now()

	assert.True(t, l.allowAt("a", now))
	assert.False(t, l.allowAt("a", now.Add(30*time.Second)))
	assert.True(t, l.allowAt("a", now.Add(time.Minute)))
}

func TestClearExpired(t *testing.T) {
	l := NewLimiter(1, time.Millisecond)

	assert.True(t, l.Allow("a"))
	time.Sleep(5 * time.Millisecond)
	l.ClearExpired()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.entries)
}
