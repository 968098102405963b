package slack

import (
	"math"
	"math/rand/v2"
	"time"
)

// ReconnectionConfig holds configuration for reconnection logic.
type ReconnectionConfig struct {
	InitialBackoff    time.Duration // Initial backoff delay (default: 500ms)
	MaxBackoff        time.Duration // Maximum backoff delay (default: 60s)
	BackoffMultiplier float64       // Backoff multiplier (default: 1.5)
	MaxRetries        int           // Consecutive failures before the breaker opens (default: 5)
	BreakerTimeout    time.Duration // How long an open breaker waits before probing (default: 2m)
	Jitter            float64       // Fraction of the delay randomized, 0 disables (default: 0.2)
}

// DefaultReconnectionConfig returns default reconnection configuration.
func DefaultReconnectionConfig() ReconnectionConfig {
	return ReconnectionConfig{
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 1.5,
		MaxRetries:        5,
		BreakerTimeout:    2 * time.Minute,
		Jitter:            0.2,
	}
}

// CalculateBackoff calculates the backoff duration based on attempt number.
// Uses exponential backoff with jitter, capped at MaxBackoff.
func CalculateBackoff(cfg ReconnectionConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attempt))

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	if cfg.Jitter > 0 {
		// Spread within [backoff*(1-jitter), backoff]
		backoff -= backoff * cfg.Jitter * rand.Float64()
	}

	return time.Duration(backoff)
}
