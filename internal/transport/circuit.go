package transport

import (
	"sync"
	"time"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// CircuitState is one of the breaker's three states.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig tunes the breaker's thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold int
	Timeout          time.Duration
	SuccessThreshold int
}

// DefaultCircuitBreakerConfig is a conservative default profile.
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	FailureThreshold: 5,
	Timeout:          30 * time.Second,
	SuccessThreshold: 2,
}

// CircuitBreaker opens after FailureThreshold consecutive failures,
// stays open for Timeout, then allows a half-open probe that closes
// again after SuccessThreshold consecutive successes.
type CircuitBreaker struct {
	mu    sync.Mutex
	cfg   CircuitBreakerConfig
	state CircuitState

	consecutiveFailures  int
	consecutiveSuccesses int
	openedAt             time.Time
	clock                func() time.Time
}

// NewCircuitBreaker builds a closed CircuitBreaker with cfg. A zero
// cfg value uses DefaultCircuitBreakerConfig.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg = DefaultCircuitBreakerConfig
	}
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed, clock: time.Now}
}

// Allow reports whether a new request may proceed, transitioning Open
// to HalfOpen once cfg.Timeout has elapsed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if b.clock().Sub(b.openedAt) >= b.cfg.Timeout {
			b.state = CircuitHalfOpen
			b.consecutiveSuccesses = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess reports a successful call, closing the circuit once
// SuccessThreshold consecutive successes land in HalfOpen.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	switch b.state {
	case CircuitHalfOpen:
		b.consecutiveSuccesses++
		if b.consecutiveSuccesses >= b.cfg.SuccessThreshold {
			b.state = CircuitClosed
		}
	case CircuitClosed:
		b.consecutiveSuccesses++
	}
}

// RecordFailure reports a failed call, opening the circuit once
// FailureThreshold consecutive failures land, and re-opening
// immediately on any failure seen while half-open.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveSuccesses = 0
	switch b.state {
	case CircuitHalfOpen:
		b.open()
	case CircuitClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.open()
		}
	}
}

func (b *CircuitBreaker) open() {
	b.state = CircuitOpen
	b.openedAt = b.clock()
	b.consecutiveFailures = 0
}

// State reports the breaker's current state.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn if Allow permits it, recording the outcome. When the
// circuit is open it returns a TransportError{Kind: CircuitOpen}
// without calling fn.
func (b *CircuitBreaker) Do(name string, fn func() error) error {
	if !b.Allow() {
		return apperrors.NewTransportError(apperrors.KindCircuitOpen, name, nil)
	}
	if err := fn(); err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}
