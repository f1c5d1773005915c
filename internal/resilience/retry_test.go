package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

var errTransient = errors.New("connection reset by peer")

func testLog() *ErrorLog {
	return NewErrorLog(slog.New(slog.NewTextHandler(io.Discard, nil)), true)
}

// stubSleep replaces the retryer's sleeper and records requested delays.
func stubSleep(r *Retryer) *[]time.Duration {
	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return &delays
}

func TestRetryer_SuccessFirstAttempt(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3}, testLog())
	stubSleep(r)

	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryer_ExhaustionWrapsAIServiceError(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3}, testLog())
	stubSleep(r)

	calls := 0
	err := r.Do(context.Background(), "summarize", func(context.Context) error {
		calls++
		return errTransient
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	var aiErr *AIServiceError
	if !errors.As(err, &aiErr) {
		t.Fatalf("err = %v, want *AIServiceError", err)
	}
	if aiErr.Attempts != 3 {
		t.Fatalf("Attempts = %d, want 3", aiErr.Attempts)
	}
	if !errors.Is(err, errTransient) {
		t.Fatalf("err should wrap the last underlying failure, got %v", err)
	}
}

func TestRetryer_FatalShortCircuits(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3}, testLog())
	stubSleep(r)

	fatal := errors.New("401 unauthorized")
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return fatal
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (fatal errors must not be retried)", calls)
	}
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v, want the original fatal error", err)
	}
	var aiErr *AIServiceError
	if errors.As(err, &aiErr) {
		t.Fatal("fatal errors must propagate unwrapped")
	}
}

func TestRetryer_ExponentialBackoffDelays(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}, testLog())
	delays := stubSleep(r)

	_ = r.Do(context.Background(), "op", func(context.Context) error {
		return errTransient
	})

	// Two sleeps for three attempts: no sleep after the final one.
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Fatalf("delays[%d] = %v, want %v", i, (*delays)[i], want[i])
		}
	}
}

func TestRetryer_FlatBackoffDelays(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, FlatBackoff: true}, testLog())
	delays := stubSleep(r)

	_ = r.Do(context.Background(), "op", func(context.Context) error {
		return errTransient
	})

	for i, d := range *delays {
		if d != time.Second {
			t.Fatalf("delays[%d] = %v, want 1s (flat)", i, d)
		}
	}
}

func TestRetryer_Defaults(t *testing.T) {
	r := NewRetryer(RetryConfig{}, testLog())
	if r.maxAttempts != DefaultMaxAttempts {
		t.Fatalf("maxAttempts = %d, want %d", r.maxAttempts, DefaultMaxAttempts)
	}
	if r.baseDelay != DefaultBaseDelay {
		t.Fatalf("baseDelay = %v, want %v", r.baseDelay, DefaultBaseDelay)
	}
	if !r.exponential {
		t.Fatal("exponential backoff should be on by default")
	}
}

func TestRetryer_ContextCancelledDuringSleep(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3, BaseDelay: time.Minute}, testLog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "op", func(context.Context) error {
		calls++
		return errTransient
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRetryWithResult_ReturnsValue(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3}, testLog())
	stubSleep(r)

	calls := 0
	got, err := RetryWithResult(r, context.Background(), "op", func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errTransient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got = %q, want ok", got)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
