package retry

import (
	"context"
	"fmt"
	"time"
)

// Forever as MaxAttempts keeps retrying until fn succeeds, returns a
// non-retryable error, or ctx is done.
const Forever = -1

// Config controls retry behaviour.
type Config struct {
	// MaxAttempts is the total number of calls including the first attempt.
	// Zero means one attempt; Forever means no limit.
	MaxAttempts int
	// BaseDelay is the base for quadratic backoff. Wait = BaseDelay * attempt².
	// Zero retries immediately.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero leaves it uncapped.
	MaxDelay time.Duration
	// Retryable decides whether err is worth another attempt. nil retries every error.
	Retryable func(err error) bool
	// OnRetry is called after a failed attempt and before the next delay.
	// attempt is 1-indexed (1 = first attempt just failed).
	OnRetry func(attempt int, err error)
}

// Do calls fn up to cfg.MaxAttempts times, passing the 1-indexed attempt number.
//
// Wait schedule with BaseDelay=1s:
//
//	attempt 1 fails → wait 1s  (1² × 1s)
//	attempt 2 fails → wait 4s  (2² × 1s)
//	attempt 3 fails → wait 9s  (3² × 1s)
//
// Returns nil on first success, the first non-retryable error, or the last
// error after all attempts.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	forever := cfg.MaxAttempts == Forever
	if cfg.MaxAttempts <= 0 && !forever {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; forever || attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}

		if !forever && attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		delay := backoff(cfg, attempt)
		if delay <= 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry cancelled after attempt %d: %w", attempt, err)
			}
			continue
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled after attempt %d: %w", attempt, ctx.Err())
		}
	}
	return lastErr
}

func backoff(cfg Config, attempt int) time.Duration {
	if cfg.BaseDelay <= 0 {
		return 0
	}
	// Past 2^15 attempts the square overflows any realistic cap anyway.
	if cfg.MaxDelay > 0 && attempt > 1<<15 {
		return cfg.MaxDelay
	}
	delay := cfg.BaseDelay * time.Duration(attempt*attempt)
	if cfg.MaxDelay > 0 && (delay > cfg.MaxDelay || delay < 0) {
		return cfg.MaxDelay
	}
	return delay
}
