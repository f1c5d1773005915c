package resilience

import "strings"

// Classification is the retry verdict for one error.
type Classification struct {
	// Retryable marks the error as transient; the retryer will attempt it
	// again with backoff. When false the error is fatal and propagates on
	// first occurrence.
	Retryable bool
}

// fatalIndicators mark auth, authorization, not-found, and bad-request
// failures. Retrying these wastes quota and delays the user — they are
// checked before the retryable list so that an ambiguous message (e.g.
// "404 not found while connecting") fails fast.
var fatalIndicators = []string{
	"401", "403", "404", "invalid api key", "authentication",
	"authorization", "bad request", "400", "not found",
}

// retryableIndicators mark transient transport and capacity failures.
var retryableIndicators = []string{
	"timeout", "connection", "network", "temporary", "503", "502", "500",
	"rate limit", "429", "quota exceeded", "service unavailable",
}

// Classify decides whether err should be retried by case-insensitive
// substring matching on its message. Unrecognized errors classify as
// retryable: the pipeline prefers wasting a few attempts on a genuinely
// permanent error over failing fast on an unrecognized transient one.
//
// Classify is a pure function of err.Error(); it exists as the single
// choke point so the string heuristics can later be swapped for typed
// error codes without touching call sites.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Retryable: false}
	}
	msg := strings.ToLower(err.Error())

	for _, indicator := range fatalIndicators {
		if strings.Contains(msg, indicator) {
			return Classification{Retryable: false}
		}
	}
	for _, indicator := range retryableIndicators {
		if strings.Contains(msg, indicator) {
			return Classification{Retryable: true}
		}
	}
	return Classification{Retryable: true}
}
