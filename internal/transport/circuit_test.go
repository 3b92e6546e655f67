package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, Timeout: time.Hour, SuccessThreshold: 1})
	for i := 0; i < 2; i++ {
		b.RecordFailure()
	}
	assert.Equal(t, CircuitClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, CircuitOpen, b.State())
	assert.False(t, b.Allow())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Minute, SuccessThreshold: 1})
	b.clock = func() time.Time { return now }
	b.RecordFailure()
	require.Equal(t, CircuitOpen, b.State())

	b.clock = func() time.Time { return now.Add(2 * time.Minute) }
	assert.True(t, b.Allow())
	assert.Equal(t, CircuitHalfOpen, b.State())
}

func TestCircuitBreaker_ClosesAfterSuccessThresholdInHalfOpen(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Minute, SuccessThreshold: 2})
	b.clock = func() time.Time { return now }
	b.RecordFailure()

	b.clock = func() time.Time { return now.Add(2 * time.Minute) }
	require.True(t, b.Allow())
	b.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, b.State())
	b.RecordSuccess()
	assert.Equal(t, CircuitClosed, b.State())
}

func TestCircuitBreaker_FailureInHalfOpenReopens(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Minute, SuccessThreshold: 2})
	b.clock = func() time.Time { return now }
	b.RecordFailure()

	b.clock = func() time.Time { return now.Add(2 * time.Minute) }
	require.True(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitOpen, b.State())
}

func TestCircuitBreaker_DoSkipsCallWhenOpen(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Hour, SuccessThreshold: 1})
	calls := 0
	_ = b.Do("x", func() error { calls++; return assert.AnError })
	err := b.Do("x", func() error { calls++; return nil })
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "second call should be skipped while the circuit is open")
}
