package resilience

import "strings"

// DefaultSummaryLength is the character budget for deterministic summaries.
const DefaultSummaryLength = 200

// NoContentSummary is returned for empty or whitespace-only input.
const NoContentSummary = "No content available for summary."

// DeterministicSummary produces a bounded summary of text without any AI
// call. It is used whenever AI summarization is skipped (short article,
// feature disabled) or has failed completely.
//
// Sentence-aware truncation is tried before character truncation: readable
// boundaries when they fit the budget, guaranteed bounded output otherwise.
// maxLength <= 0 selects [DefaultSummaryLength].
func DeterministicSummary(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return NoContentSummary
	}

	// Lengths are counted in runes so Devanagari summaries get the same
	// budget as ASCII ones.
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	// First two sentences, if they fit.
	if sentences := strings.Split(text, ". "); len(sentences) >= 2 {
		summary := strings.Join(sentences[:2], ". ") + "."
		if len([]rune(summary)) <= maxLength {
			return summary
		}
	}

	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}

// Chain exposes the summary/sentiment callers' fallback chain without
// handing them the whole orchestrator. Semantics are identical to
// [Orchestrator.ChainFor].
func (o *Orchestrator) Chain(requested string) []string {
	return o.ChainFor(requested)
}
