package resilience

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the retry budget when none is configured.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the first-retry delay when none is configured.
	DefaultBaseDelay = time.Second
)

// RetryConfig holds the tuning knobs for a [Retryer]. Zero-value fields are
// replaced with defaults by [NewRetryer].
type RetryConfig struct {
	// MaxAttempts is the total number of calls, not the number of retries.
	MaxAttempts int

	// BaseDelay is the sleep before the second attempt.
	BaseDelay time.Duration

	// FlatBackoff disables exponential growth, sleeping BaseDelay between
	// every attempt. The default is exponential: BaseDelay * 2^(attempt-1).
	FlatBackoff bool
}

// Retryer executes callables with bounded, classification-aware retry.
// Fatal-classified errors (see [Classify]) propagate on the first
// occurrence; retryable ones are re-attempted with backoff until the budget
// is exhausted, at which point an [*AIServiceError] wrapping the last
// failure is returned.
//
// Safe for concurrent use: all per-call state is local.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	exponential bool
	log         *ErrorLog

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer creates a [Retryer]. Zero-value config fields get
// [DefaultMaxAttempts] and [DefaultBaseDelay].
func NewRetryer(cfg RetryConfig, log *ErrorLog) *Retryer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return &Retryer{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		exponential: !cfg.FlatBackoff,
		log:         log,
		sleep:       sleepCtx,
	}
}

// Do runs fn up to MaxAttempts times. op labels the operation in log
// records. A fatal error returns immediately and unwrapped; exhausting the
// budget returns an [*AIServiceError]. There is no sleep after the final
// attempt.
func (r *Retryer) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	_, err := RetryWithResult(r, ctx, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithResult is [Retryer.Do] for callables that produce a value. It is
// a package-level function because Go does not support method-level type
// parameters.
func RetryWithResult[R any](r *Retryer, ctx context.Context, op string, fn func(context.Context) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !Classify(err).Retryable {
			return zero, err
		}

		r.log.AIService(op, err, attempt)
		r.log.retry(op)

		if attempt < r.maxAttempts {
			if serr := r.sleep(ctx, r.delayFor(attempt)); serr != nil {
				return zero, serr
			}
		}
	}
	return zero, &AIServiceError{Op: op, Attempts: r.maxAttempts, Err: lastErr}
}

// delayFor returns the backoff before the attempt following attempt (1-based).
func (r *Retryer) delayFor(attempt int) time.Duration {
	if !r.exponential {
		return r.baseDelay
	}
	return r.baseDelay << (attempt - 1)
}

// sleepCtx blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
