package resilience

import (
	"context"
	"errors"
	"testing"
)

func TestSentimentGuard_PassesThroughSuccess(t *testing.T) {
	g := NewSentimentGuard(testLog(), true)

	got, err := g.Classify(context.Background(), "analyze", func(context.Context) (Sentiment, error) {
		return SentimentPositive, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SentimentPositive {
		t.Fatalf("got = %q, want positive", got)
	}
}

func TestSentimentGuard_DegradesToNeutral(t *testing.T) {
	g := NewSentimentGuard(testLog(), true)

	got, err := g.Classify(context.Background(), "analyze", func(context.Context) (Sentiment, error) {
		return "", errors.New("model exploded")
	})
	if err != nil {
		t.Fatalf("Classify must not error while fallback is enabled, got %v", err)
	}
	if got != SentimentNeutral {
		t.Fatalf("got = %q, want neutral", got)
	}
}

func TestSentimentGuard_DisabledFallbackPropagates(t *testing.T) {
	g := NewSentimentGuard(testLog(), false)

	boom := errors.New("model exploded")
	_, err := g.Classify(context.Background(), "analyze", func(context.Context) (Sentiment, error) {
		return "", boom
	})
	var sentErr *SentimentAnalysisError
	if !errors.As(err, &sentErr) {
		t.Fatalf("err = %v, want *SentimentAnalysisError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("error should wrap the underlying failure")
	}
}

func TestSentimentGuard_LogsExactlyOneEvent(t *testing.T) {
	rec := &countingRecorder{}
	log := NewErrorLog(nil, false, WithRecorder(rec))
	g := NewSentimentGuard(log, true)

	_, _ = g.Classify(context.Background(), "analyze", func(context.Context) (Sentiment, error) {
		return "", errors.New("nope")
	})
	if rec.events["sentiment"] != 1 {
		t.Fatalf("sentiment events = %d, want 1", rec.events["sentiment"])
	}
}

func TestTooShortForSentiment(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"short", true},
		{"  nineteen chars!!  ", true},
		{"this text is definitely long enough to classify", false},
		{"यह वाक्य वर्गीकरण के लिए पर्याप्त लंबा है", false},
	}
	for _, tt := range tests {
		if got := TooShortForSentiment(tt.text); got != tt.want {
			t.Errorf("TooShortForSentiment(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// countingRecorder tallies events per kind.
type countingRecorder struct {
	events  map[string]int
	retries int
}

func (r *countingRecorder) FallbackEvent(kind, _, _ string) {
	if r.events == nil {
		r.events = map[string]int{}
	}
	r.events[kind]++
}

func (r *countingRecorder) RetryAttempt(string) { r.retries++ }
