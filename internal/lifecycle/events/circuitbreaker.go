package events

import (
	"sync"
	"time"
)

// CircuitBreaker stops delivery attempts while the downstream sink is failing.
// After cooldown one attempt is let through; success closes the circuit.
type CircuitBreaker struct {
	mu sync.RWMutex

	threshold int           // consecutive failures that open the circuit
	cooldown  time.Duration // how long to stay open
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a delivery may be attempted.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	if !cb.isOpen {
		cb.mu.RUnlock()
		return true
	}
	expired := cb.now().After(cb.openUntil)
	cb.mu.RUnlock()
	if !expired {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	// Half-open: one more failure reopens immediately.
	if cb.isOpen && cb.now().After(cb.openUntil) {
		cb.isOpen = false
		cb.failures = cb.threshold - 1
	}
	return !cb.isOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.isOpen = false
}

// RecordFailure counts a failure and reports whether the circuit is now open.
func (cb *CircuitBreaker) RecordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	if cb.failures >= cb.threshold {
		cb.isOpen = true
		cb.openUntil = cb.now().Add(cb.cooldown)
	}
	return cb.isOpen
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.isOpen
}
