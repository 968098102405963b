package flip

import (
	"context"
	"math"
	"math/rand"
	"time"

	domainerrors "github.com/qj0r9j0vc2/slack-tableflip/internal/domain/errors"
)

// RetryPolicy defines the retry behavior for failed operations.
type RetryPolicy struct {
	MaxAttempts     int           // Maximum number of attempts (including first try)
	InitialInterval time.Duration // Initial backoff interval
	MaxInterval     time.Duration // Maximum backoff interval
	Multiplier      float64       // Backoff multiplier
	JitterFactor    float64       // Random jitter factor (0.0-1.0)
}

// DefaultRetryPolicy returns a retry policy that fits inside Slack's
// three second reply window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// RetryablePoster wraps a Poster with retry logic for transient failures.
// An optional Breaker stops hammering Slack once it is clearly down.
type RetryablePoster struct {
	poster   Poster
	policy   RetryPolicy
	breaker  Breaker
	recorder Recorder
	logger   Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetryablePoster creates a new RetryablePoster with the given policy.
// breaker and recorder may be nil.
func NewRetryablePoster(poster Poster, policy RetryPolicy, breaker Breaker, recorder Recorder, logger Logger) *RetryablePoster {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RetryablePoster{
		poster:   poster,
		policy:   policy,
		breaker:  breaker,
		recorder: recorder,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// PostAsUser posts with retry logic for transient failures.
func (r *RetryablePoster) PostAsUser(ctx context.Context, token, channelID, text string) (string, error) {
	start := time.Now()
	var lastErr error
	var timestamp string

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		timestamp, lastErr = r.attempt(ctx, token, channelID, text)

		// Success - return immediately
		if lastErr == nil {
			if attempt > 1 {
				r.logger.Info("delivery succeeded after retry",
					"poster", r.poster.Name(),
					"channel_id", channelID,
					"attempt", attempt,
				)
			}
			r.recorder.RecordDelivery(ctx, r.poster.Name(), true, time.Since(start), attempt-1)
			return timestamp, nil
		}

		// Permanent error or open circuit - don't retry
		if !domainerrors.IsTransientError(lastErr) {
			r.logger.Warn("delivery failed with permanent error",
				"poster", r.poster.Name(),
				"channel_id", channelID,
				"error", lastErr,
			)
			r.recorder.RecordDelivery(ctx, r.poster.Name(), false, time.Since(start), attempt-1)
			return "", lastErr
		}

		// Last attempt failed - don't sleep
		if attempt == r.policy.MaxAttempts {
			r.logger.Error("delivery failed after max retries",
				"poster", r.poster.Name(),
				"channel_id", channelID,
				"attempts", attempt,
				"error", lastErr,
			)
			break
		}

		backoff := r.calculateBackoff(attempt)
		r.logger.Warn("delivery failed, retrying",
			"poster", r.poster.Name(),
			"channel_id", channelID,
			"attempt", attempt,
			"backoff", backoff,
			"error", lastErr,
		)

		if err := r.sleep(ctx, backoff); err != nil {
			r.recorder.RecordDelivery(ctx, r.poster.Name(), false, time.Since(start), attempt-1)
			return "", err
		}
	}

	r.recorder.RecordDelivery(ctx, r.poster.Name(), false, time.Since(start), r.policy.MaxAttempts-1)
	return "", lastErr
}

// attempt makes one call, through the breaker when there is one.
func (r *RetryablePoster) attempt(ctx context.Context, token, channelID, text string) (string, error) {
	if r.breaker == nil {
		return r.poster.PostAsUser(ctx, token, channelID, text)
	}

	var timestamp string
	err := r.breaker.Execute(ctx, func() error {
		var err error
		timestamp, err = r.poster.PostAsUser(ctx, token, channelID, text)
		return err
	})
	return timestamp, err
}

// Name returns the underlying poster name.
func (r *RetryablePoster) Name() string {
	return r.poster.Name()
}

// calculateBackoff calculates the backoff duration with exponential growth and jitter.
// Formula: min(InitialInterval * Multiplier^(attempt-1) * (1 ± jitter), MaxInterval)
func (r *RetryablePoster) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.policy.InitialInterval) * math.Pow(r.policy.Multiplier, float64(attempt-1))

	// Apply jitter (-jitterFactor to +jitterFactor)
	jitter := 1.0 + (rand.Float64()*2.0-1.0)*r.policy.JitterFactor
	backoff *= jitter

	if backoff > float64(r.policy.MaxInterval) {
		backoff = float64(r.policy.MaxInterval)
	}

	return time.Duration(backoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
