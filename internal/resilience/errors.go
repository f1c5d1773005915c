// Package resilience implements the failure-handling pipeline that wraps
// every external call NewsFlash makes: language-aware fallback chains,
// bounded exponential-backoff retry, and degraded-but-correct defaults for
// sentiment and summaries.
//
// The package distinguishes four error kinds. [LanguageError] signals that
// every language in a fallback chain was exhausted — the one path that is
// surfaced to callers instead of degraded. [AIServiceError] signals retry
// exhaustion against an LLM backend. [SentimentAnalysisError] is returned
// only when sentiment degradation has been disabled by configuration.
// [TTSError] scopes the same rules to speech synthesis.
//
// All types are safe for concurrent use; per-call state (chains, attempt
// counters) lives on the stack of the invoking goroutine.
package resilience

import (
	"fmt"
	"strings"
)

// LanguageError reports that an operation failed for every language in its
// fallback chain, including the default.
type LanguageError struct {
	// Op is the caller-supplied operation name.
	Op string

	// Language is the last language attempted (always the default).
	Language string

	// Err is the failure from the final attempt.
	Err error
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("all language fallbacks failed in %s (last language %q): %v", e.Op, e.Language, e.Err)
}

func (e *LanguageError) Unwrap() error { return e.Err }

// SentimentAnalysisError reports a sentiment classification failure. It is
// only ever returned when sentiment fallback is disabled; with fallback
// enabled the guard absorbs the failure and returns the default sentiment.
type SentimentAnalysisError struct {
	Op  string
	Err error
}

func (e *SentimentAnalysisError) Error() string {
	return fmt.Sprintf("sentiment analysis failed in %s: %v", e.Op, e.Err)
}

func (e *SentimentAnalysisError) Unwrap() error { return e.Err }

// AIServiceError reports that every retry attempt against an AI backend
// failed. Attempts records how many calls were made.
type AIServiceError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *AIServiceError) Error() string {
	return fmt.Sprintf("all %d retry attempts failed in %s: %v", e.Attempts, e.Op, e.Err)
}

func (e *AIServiceError) Unwrap() error { return e.Err }

// TTSError reports a speech synthesis failure for a specific language.
type TTSError struct {
	Op       string
	Language string
	Err      error
}

func (e *TTSError) Error() string {
	return fmt.Sprintf("tts failed in %s for language %q: %v", e.Op, e.Language, e.Err)
}

func (e *TTSError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err looks like a rate-limit or quota
// failure. The match is on the message text because the upstream SDKs
// surface HTTP details that way.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}
