package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is refusing calls.
var ErrCircuitOpen = errors.New("cache circuit open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker trips after consecutive cache failures and probes with a
// limited number of calls before closing again.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       breakerState
	failures    int
	probes      int
	lastFailure time.Time
	maxFailures int
	cooldown    time.Duration
	maxProbes   int
}

type CircuitBreakerConfig struct {
	MaxFailures int
	Cooldown    time.Duration
	MaxProbes   int
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
		MaxProbes:   3,
	}
}

func NewCircuitBreaker(cfg *CircuitBreakerConfig) *CircuitBreaker {
	if cfg == nil {
		cfg = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreaker{
		state:       breakerClosed,
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		maxProbes:   cfg.MaxProbes,
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.record(false)
		return err
	}
	cb.record(true)
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(cb.lastFailure) >= cb.cooldown {
			cb.state = breakerHalfOpen
			cb.probes = 0
			return true
		}
		return false
	default: // half-open
		return cb.probes < cb.maxProbes
	}
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !success {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == breakerHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = breakerOpen
		}
		return
	}

	switch cb.state {
	case breakerClosed:
		cb.failures = 0
	case breakerHalfOpen:
		cb.probes++
		if cb.probes >= cb.maxProbes {
			cb.state = breakerClosed
			cb.failures = 0
		}
	}
}

// State reports the breaker state as a string for diagnostics.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}
