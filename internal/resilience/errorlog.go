package resilience

import "log/slog"

// Recorder receives fire-and-forget counters for each failure or fallback
// event. It decouples the error log from the metrics backend; the observe
// package provides an OpenTelemetry-backed implementation.
type Recorder interface {
	// FallbackEvent records one failure/fallback occurrence. kind is one of
	// "language", "sentiment", "ai_service", "rate_limit", or "tts".
	FallbackEvent(kind, operation, language string)

	// RetryAttempt records one retry of operation.
	RetryAttempt(operation string)
}

// ErrorLog writes one structured record per failure or fallback event.
// Records are write-only: nothing in the pipeline reads them back, they
// exist for operators and external observability.
//
// The zero value is unusable; construct with [NewErrorLog]. Safe for
// concurrent use from multiple in-flight requests.
type ErrorLog struct {
	logger   *slog.Logger
	enabled  bool
	recorder Recorder
}

// ErrorLogOption configures an [ErrorLog].
type ErrorLogOption func(*ErrorLog)

// WithRecorder attaches a metrics recorder. Events are counted even while
// log records are suppressed.
func WithRecorder(r Recorder) ErrorLogOption {
	return func(l *ErrorLog) {
		l.recorder = r
	}
}

// NewErrorLog creates an [ErrorLog] writing through logger. When enabled is
// false no records are written, but control flow of the callers and any
// attached recorder are unaffected. A nil logger uses slog.Default.
func NewErrorLog(logger *slog.Logger, enabled bool, opts ...ErrorLogOption) *ErrorLog {
	if logger == nil {
		logger = slog.Default()
	}
	l := &ErrorLog{logger: logger, enabled: enabled}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Language records a failure of a language-specific operation.
// fallbackUsed names the language substituted for the failing one, or "" when
// no substitute was applied.
func (l *ErrorLog) Language(operation, language string, err error, fallbackUsed string) {
	l.record("language", operation, language)
	if !l.enabled {
		return
	}
	attrs := []any{"operation", operation, "language", language, "error", err}
	if fallbackUsed != "" {
		attrs = append(attrs, "fallback_used", fallbackUsed)
	}
	l.logger.Error("language error", attrs...)
}

// Sentiment records a sentiment classification failure and the substituted
// value.
func (l *ErrorLog) Sentiment(operation string, err error, fallbackUsed Sentiment) {
	l.record("sentiment", operation, "")
	if !l.enabled {
		return
	}
	l.logger.Error("sentiment analysis error",
		"operation", operation,
		"error", err,
		"fallback_used", string(fallbackUsed),
	)
}

// AIService records an AI backend failure, categorized as "rate limit" when
// the message carries a 429/quota/rate-limit marker, else "ai service".
// retryCount is the attempt number that failed (0 when not inside a retry
// loop).
func (l *ErrorLog) AIService(operation string, err error, retryCount int) {
	kind := "ai_service"
	category := "AI service"
	if IsRateLimited(err) {
		kind = "rate_limit"
		category = "rate limit"
	}
	l.record(kind, operation, "")
	if !l.enabled {
		return
	}
	attrs := []any{"operation", operation, "category", category, "error", err}
	if retryCount > 0 {
		attrs = append(attrs, "retry_attempt", retryCount)
	}
	l.logger.Error("ai service error", attrs...)
}

// TTS records a speech synthesis failure.
func (l *ErrorLog) TTS(operation, language string, err error, fallbackUsed string) {
	l.record("tts", operation, language)
	if !l.enabled {
		return
	}
	attrs := []any{"operation", operation, "language", language, "error", err}
	if fallbackUsed != "" {
		attrs = append(attrs, "fallback_used", fallbackUsed)
	}
	l.logger.Error("tts error", attrs...)
}

func (l *ErrorLog) record(kind, operation, language string) {
	if l.recorder != nil {
		l.recorder.FallbackEvent(kind, operation, language)
	}
}

// retry is called by the retryer for every retryable failure so the
// recorder sees attempts even when logging is suppressed.
func (l *ErrorLog) retry(operation string) {
	if l.recorder != nil {
		l.recorder.RetryAttempt(operation)
	}
}
