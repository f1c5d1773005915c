package resilience

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Sentiment is the three-valued tone classification of a piece of text.
// Values produced by the pipeline are always one of the three constants;
// [DefaultSentiment] is substituted whenever classification fails.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// DefaultSentiment is the value substituted when classification fails or is
// skipped.
const DefaultSentiment = SentimentNeutral

// MinSentimentLength is the shortest text (in runes) worth classifying.
// Anything below it is trivially [DefaultSentiment] — no external call.
const MinSentimentLength = 20

// TooShortForSentiment reports whether text, after trimming surrounding
// whitespace, falls under [MinSentimentLength].
func TooShortForSentiment(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinSentimentLength
}

// SentimentGuard wraps sentiment classification callables so that failures
// degrade to [DefaultSentiment] instead of propagating. With fallback
// disabled (sentiment_fallback_enabled=false) failures surface as
// [*SentimentAnalysisError] instead.
type SentimentGuard struct {
	log             *ErrorLog
	fallbackEnabled bool
}

// NewSentimentGuard creates a [SentimentGuard]. fallbackEnabled corresponds
// to the sentiment_fallback_enabled configuration option.
func NewSentimentGuard(log *ErrorLog, fallbackEnabled bool) *SentimentGuard {
	return &SentimentGuard{log: log, fallbackEnabled: fallbackEnabled}
}

// Classify invokes fn and returns its sentiment. On any failure the error
// is logged — including the fallback value used — and [DefaultSentiment] is
// returned with a nil error; the log is the only signal that degradation
// occurred. Only when fallback is disabled does the error propagate,
// wrapped as a [*SentimentAnalysisError].
func (g *SentimentGuard) Classify(ctx context.Context, op string, fn func(ctx context.Context) (Sentiment, error)) (Sentiment, error) {
	s, err := fn(ctx)
	if err == nil {
		return s, nil
	}

	if g.fallbackEnabled {
		g.log.Sentiment(op, err, DefaultSentiment)
		return DefaultSentiment, nil
	}
	g.log.Sentiment(op, err, "")
	return DefaultSentiment, &SentimentAnalysisError{Op: op, Err: err}
}
