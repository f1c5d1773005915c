package news

import (
	"fmt"
	"strings"
)

// Prompt input caps keep token usage bounded regardless of article size.
const (
	maxPromptTitleLen   = 200
	maxPromptArticleLen = 800
)

// summaryPrompts holds the per-language combined summary + sentiment prompt.
// Each template takes the article title and body and instructs the model to
// answer with labelled "Summary:" and "Sentiment:" lines (or their
// Devanagari equivalents) that parseSummaryAndSentiment understands.
var summaryPrompts = map[string]string{
	"en": `Create a 2-sentence summary and analyze sentiment (positive/negative/neutral) for this news article:

Title: %s
Article: %s

Format your response as:
Summary: [your summary]
Sentiment: [positive/negative/neutral]`,

	"hi": `इस समाचार लेख का 2-वाक्य सारांश बनाएं और भावना (सकारात्मक/नकारात्मक/तटस्थ) का विश्लेषण करें:

शीर्षक: %s
लेख: %s

अपना उत्तर इस प्रारूप में दें:
सारांश: [आपका सारांश]
भावना: [सकारात्मक/नकारात्मक/तटस्थ]`,

	"mr": `या बातमी लेखाचा 2-वाक्य सारांश तयार करा आणि भावना (सकारात्मक/नकारात्मक/तटस्थ) चे विश्लेषण करा:

शीर्षक: %s
लेख: %s

तुमचे उत्तर या स्वरूपात द्या:
सारांश: [तुमचा सारांश]
भावना: [सकारात्मक/नकारात्मक/तटस्थ]`,
}

// summaryPrompt renders the combined prompt for lang, falling back to the
// English template for languages without one.
func summaryPrompt(lang, title, articleText string) string {
	tmpl, ok := summaryPrompts[strings.ToLower(lang)]
	if !ok {
		tmpl = summaryPrompts["en"]
	}
	return fmt.Sprintf(tmpl, truncateRunes(title, maxPromptTitleLen), truncateRunes(articleText, maxPromptArticleLen))
}

// truncateRunes bounds s to max runes without splitting multi-byte characters.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
