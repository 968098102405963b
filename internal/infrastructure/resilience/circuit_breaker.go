package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows all requests through.
	StateClosed State = iota
	// StateOpen rejects all requests.
	StateOpen
	// StateHalfOpen allows limited requests to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// StateChangeFunc observes breaker transitions.
type StateChangeFunc func(name string, from, to State)

// CircuitBreaker implements the circuit breaker pattern to prevent cascading failures.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	timeout      time.Duration
	halfOpenSucc int // Successes needed in half-open to close
	now          func() time.Time
	onChange     StateChangeFunc
	isFailure    func(error) bool

	mu           sync.RWMutex
	state        State
	failures     int
	lastFailTime time.Time
	successCount int
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) { cb.now = now }
}

// WithStateChange registers a transition observer. It runs with the breaker locked
// and must not call back into it.
func WithStateChange(fn StateChangeFunc) Option {
	return func(cb *CircuitBreaker) { cb.onChange = fn }
}

// WithFailureFilter decides which errors count as failures. Errors it rejects
// pass through and reset nothing.
func WithFailureFilter(fn func(error) bool) Option {
	return func(cb *CircuitBreaker) { cb.isFailure = fn }
}

// WithHalfOpenSuccesses sets how many half-open successes close the circuit.
func WithHalfOpenSuccesses(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.halfOpenSucc = n
		}
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker(name string, maxFailures int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		timeout:      timeout,
		halfOpenSucc: 2, // Require 2 successes to close
		now:          time.Now,
		isFailure:    func(err error) bool { return err != nil },
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Execute runs the given function with circuit breaker protection.
// A cancelled context is returned without counting against the circuit.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (ctx.Err() != nil || !cb.isFailure(err)) {
		// Our own deadline or a caller error, not the dependency's fault
		return err
	}
	cb.afterRequest(err)

	return err
}

// setState transitions and notifies. Caller holds cb.mu.
func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.onChange != nil {
		cb.onChange(cb.name, from, to)
	}
}

// beforeRequest checks if the request should be allowed.
func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		// Check if timeout has elapsed
		if cb.now().Sub(cb.lastFailTime) > cb.timeout {
			// Transition to half-open
			cb.setState(StateHalfOpen)
			cb.successCount = 0
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen, StateClosed:
		return nil

	default:
		return nil
	}
}

// afterRequest updates the circuit breaker state based on the result.
func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		// Failure
		cb.failures++
		cb.lastFailTime = cb.now()

		if cb.state == StateHalfOpen {
			// Failure in half-open -> reopen
			cb.setState(StateOpen)
		} else if cb.failures >= cb.maxFailures {
			// Too many failures -> open
			cb.setState(StateOpen)
		}
	} else {
		// Success
		if cb.state == StateHalfOpen {
			cb.successCount++
			if cb.successCount >= cb.halfOpenSucc {
				// Enough successes -> close
				cb.setState(StateClosed)
				cb.failures = 0
			}
		} else if cb.state == StateClosed {
			// Reset failure counter on success
			cb.failures = 0
		}
	}
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Failures returns the current failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
