package news

import (
	"strings"

	"github.com/newsflash/newsflash/internal/resilience"
)

// Sentiment keywords across supported scripts. Order matters: positive is
// checked before negative so that a response mentioning both resolves the
// same way every time.
var (
	positiveWords = []string{"positive", "सकारात्मक"}
	negativeWords = []string{"negative", "नकारात्मक"}
	neutralWords  = []string{"neutral", "तटस्थ"}
)

// Labels the model is instructed to emit; Devanagari forms are shared by
// Hindi and Marathi.
var (
	summaryLabels   = []string{"summary:", "सारांश:"}
	sentimentLabels = []string{"sentiment:", "भावना:"}
)

// parseSentiment extracts a sentiment from free-form model output. It scans
// the whole response for sentiment keywords first, then falls back to
// labelled "Sentiment:" lines, and defaults to neutral when nothing matches.
func parseSentiment(response string) resilience.Sentiment {
	lower := strings.ToLower(response)

	if containsAny(lower, positiveWords) {
		return resilience.SentimentPositive
	}
	if containsAny(lower, negativeWords) {
		return resilience.SentimentNegative
	}
	if containsAny(lower, neutralWords) {
		return resilience.SentimentNeutral
	}

	for _, line := range strings.Split(response, "\n") {
		lineLower := strings.ToLower(line)
		if !containsAny(lineLower, sentimentLabels) {
			continue
		}
		switch {
		case containsAny(lineLower, positiveWords):
			return resilience.SentimentPositive
		case containsAny(lineLower, negativeWords):
			return resilience.SentimentNegative
		case containsAny(lineLower, neutralWords):
			return resilience.SentimentNeutral
		}
	}

	return resilience.SentimentNeutral
}

// parseSummaryAndSentiment extracts the labelled summary and sentiment lines
// from a combined response. A missing summary is returned as "" so the
// caller can substitute a deterministic one; the sentiment always resolves,
// defaulting to neutral.
func parseSummaryAndSentiment(response string) (string, resilience.Sentiment) {
	var (
		summary   string
		sentiment resilience.Sentiment
	)

	lines := strings.Split(response, "\n")
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		lower := strings.ToLower(stripped)

		if label, ok := prefixOf(lower, summaryLabels); ok {
			summary = strings.TrimSpace(stripped[len(label):])
		} else if label, ok := prefixOf(lower, sentimentLabels); ok {
			sentiment = parseSentiment(stripped[len(label):])
		}
	}

	// Models sometimes put the summary on lines after the label instead of
	// behind it; collect up to three of those.
	if summary == "" {
		summary = summaryAfterLabel(lines)
	}
	if sentiment == "" {
		sentiment = parseSentiment(response)
	}
	return summary, sentiment
}

// summaryAfterLabel finds the line carrying a summary label and joins the
// following non-label lines into a summary.
func summaryAfterLabel(lines []string) string {
	start := -1
	for i, line := range lines {
		if containsAny(strings.ToLower(line), summaryLabels) {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	var collected []string
	for i := start + 1; i < len(lines) && i <= start+3; i++ {
		stripped := strings.TrimSpace(lines[i])
		if stripped == "" || containsAny(strings.ToLower(stripped), sentimentLabels) {
			break
		}
		collected = append(collected, stripped)
	}
	return strings.Join(collected, " ")
}

// prefixOf returns the first label that lower starts with. Labels are
// already lowercase; Devanagari has no case so byte lengths line up between
// the lowered copy and the original line.
func prefixOf(lower string, labels []string) (string, bool) {
	for _, label := range labels {
		if strings.HasPrefix(lower, label) {
			return label, true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
